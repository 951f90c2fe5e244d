package forms

import "github.com/gofiber/fiber/v2"

const MaxMessageLength = 4000

type NewTopicData struct {
	Subject string `form:"subject" validate:"required,max=255"`
	Message string `form:"message" validate:"required,max=4000"`
}

// NewTopicForm opens a topic with its first post.
type NewTopicForm struct {
	*Form
	Data NewTopicData
}

func NewNewTopicForm() *NewTopicForm {
	return &NewTopicForm{Form: New(
		Field{Name: "subject", Label: "Subject", Widget: TextInput, MaxLength: 255, Required: true},
		Field{Name: "message", Label: "Message", Widget: Textarea, MaxLength: MaxMessageLength, Required: true, Rows: 5,
			HelpText: "The max length of the text is 4000."},
	)}
}

func (f *NewTopicForm) Bind(c *fiber.Ctx) error { return f.parse(c, &f.Data) }

func (f *NewTopicForm) Validate() bool {
	f.check(&f.Data)
	return f.Valid()
}
