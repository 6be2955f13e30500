package entity

type ActionKind int

const (
	ActionText ActionKind = iota
	ActionStart
	ActionHome
	ActionConvertMenu
	ActionChooseDate
	ActionLatestDate
	ActionRefresh
	ActionHistory
	ActionRepeat
	ActionPickBase
	ActionPickTarget
	ActionNoop
)

var actionNames = map[ActionKind]string{
	ActionText:        "text",
	ActionStart:       "start",
	ActionHome:        "home",
	ActionConvertMenu: "convertMenu",
	ActionChooseDate:  "chooseDate",
	ActionLatestDate:  "latestDate",
	ActionRefresh:     "refresh",
	ActionHistory:     "history",
	ActionRepeat:      "repeat",
	ActionPickBase:    "pickBase",
	ActionPickTarget:  "pickTarget",
	ActionNoop:        "noop",
}

func (k ActionKind) String() string {
	if name, ok := actionNames[k]; ok {
		return name
	}
	return "unknown"
}

// Action is what the user asked for. Currency is set for ActionPickBase and
// ActionPickTarget, Text for ActionText.
type Action struct {
	Kind     ActionKind
	Currency Currency
	Text     string
}

func TextAction(text string) Action {
	return Action{Kind: ActionText, Text: text}
}

func PickBase(c Currency) Action {
	return Action{Kind: ActionPickBase, Currency: c}
}

func PickTarget(c Currency) Action {
	return Action{Kind: ActionPickTarget, Currency: c}
}

type EventSource int

const (
	SourceText EventSource = iota
	SourceButton
)

type UserEvent struct {
	UserID int64
	Source EventSource
	Action Action
}

type Button struct {
	Label  string
	Action Action
}

// OutboundMessage is a transport-independent reply. Buttons are laid out
// row by row. Menu asks the gateway to attach its persistent quick-action
// keyboard instead of inline buttons.
type OutboundMessage struct {
	Text    string
	Buttons [][]Button
	Menu    bool
}
