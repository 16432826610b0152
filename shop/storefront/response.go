package storefront

// Button is an inline button carrying a callback token.
type Button struct {
	Text string
	Data string
}

// Keyboard describes the markup attached to a reply. Inline and Menu are exclusive;
// Inline wins when both are set.
type Keyboard struct {
	Inline [][]Button
	// Menu is a persistent reply keyboard of text buttons.
	Menu [][]string
}

// Reply is one outbound message.
type Reply struct {
	Text     string
	Keyboard *Keyboard
	// Edit replaces the message the triggering button belongs to instead of sending a new one.
	Edit bool
	// Markdown marks Text as Telegram Markdown (v1).
	Markdown bool
}

// Response is everything a handler wants sent back for one inbound event.
type Response struct {
	Replies []Reply
	// Notice is a short toast shown on the pressed button, if any.
	Notice string
}

func say(text string) Response {
	return Response{Replies: []Reply{{Text: text}}}
}

func sayWith(text string, kb *Keyboard) Response {
	return Response{Replies: []Reply{{Text: text, Keyboard: kb}}}
}

func edit(text string, kb *Keyboard) Response {
	return Response{Replies: []Reply{{Text: text, Keyboard: kb, Edit: true}}}
}

func notice(text string) Response {
	return Response{Notice: text}
}

func inline(rows ...[]Button) *Keyboard {
	return &Keyboard{Inline: rows}
}

func row(buttons ...Button) []Button { return buttons }
