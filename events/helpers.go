package events

// NewUserMessageItem builds a user text message item.
func NewUserMessageItem(text string) Item {
	return Item{
		Type: ItemTypeMessage,
		Role: RoleUser,
		Content: []ContentPart{
			{Type: ContentTypeInputText, Text: text},
		},
	}
}

// NewSystemMessageItem builds a system message item.
func NewSystemMessageItem(text string) Item {
	return Item{
		Type: ItemTypeMessage,
		Role: RoleSystem,
		Content: []ContentPart{
			{Type: ContentTypeInputText, Text: text},
		},
	}
}

// NewFunctionCallOutputItem builds the result item for a completed
// tool call.
func NewFunctionCallOutputItem(callID, output string) Item {
	return Item{
		Type:   ItemTypeFunctionCallOutput,
		CallID: callID,
		Output: output,
	}
}
