package widget

// Role identifies who authored a transcript row.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Message is one immutable transcript row.
type Message struct {
	Role Role
	Text string
}

// Image is a generated image row. Src is either a URL or a data URI.
type Image struct {
	Src string
	Alt string
}

// Row is an opaque handle to a transcript row that can later be removed.
type Row interface{}

// Transcript is the append-only message list.
type Transcript interface {
	AppendMessage(Message)
	AppendImage(Image)
	// AppendTyping adds a transient placeholder row and returns its handle.
	AppendTyping(text string) Row
	Remove(Row)
	ScrollToBottom()
}

// InputField is the text box the user types into.
type InputField interface {
	Value() string
	Clear()
	Focus()
}

// Control is anything that can be enabled or disabled.
type Control interface {
	SetEnabled(bool)
}

// Label is a single line of text.
type Label interface {
	SetText(string)
}

// Toggle is a checkable control.
type Toggle interface {
	Control
	Checked() bool
}

// Bindings are the UI elements the widget drives. GenImage is optional; every other
// field is required.
type Bindings struct {
	Chat     Transcript
	Input    InputField
	Send     Control
	Err      Label
	Status   Label
	GenImage Toggle
}
