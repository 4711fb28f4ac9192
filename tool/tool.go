package tool

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
)

type Choice string

const (
	ChoiceAuto     Choice = "auto"
	ChoiceNone     Choice = "none"
	ChoiceRequired Choice = "required"
)

// Tool declares a function the model may call.
type Tool struct {
	Type        string     `json:"type"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Parameters  Parameters `json:"parameters"`
}

type Parameters struct {
	Type       string     `json:"type"`
	Properties Properties `json:"properties"`
	Required   []string   `json:"required,omitempty"`
}

type Properties map[string]Property

type Property struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Enum        []any  `json:"enum,omitempty"`
}

// New builds a function tool with hand-written parameters.
func New(name, description string, params Parameters) Tool {
	if params.Type == "" {
		params.Type = "object"
	}
	return Tool{
		Type:        "function",
		Name:        name,
		Description: description,
		Parameters:  params,
	}
}

// Reflect derives a function tool's parameter schema from the fields
// of T via jsonschema reflection.
func Reflect[T any](name, description string) (Tool, error) {
	reflector := jsonschema.Reflector{
		DoNotReference:            true,
		AllowAdditionalProperties: false,
	}
	var zero T
	t := reflect.TypeOf(zero)
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return Tool{}, fmt.Errorf("tool %s: parameters must be a struct type", name)
	}
	schema := reflector.ReflectFromType(t)

	raw, err := json.Marshal(schema)
	if err != nil {
		return Tool{}, fmt.Errorf("tool %s: marshal schema: %w", name, err)
	}
	var params Parameters
	if err := json.Unmarshal(raw, &params); err != nil {
		return Tool{}, fmt.Errorf("tool %s: schema does not reduce to parameters: %w", name, err)
	}
	if params.Type == "" {
		params.Type = "object"
	}

	return Tool{
		Type:        "function",
		Name:        name,
		Description: description,
		Parameters:  params,
	}, nil
}
