package agent

import (
	"github.com/google/generative-ai-go/genai"

	"github.com/wolfman30/clinic-scheduler/internal/tools"
)

// FunctionDeclarations converts tool definitions into Gemini function
// declarations. Tools without parameters are declared without a schema.
func FunctionDeclarations(defs []tools.Definition) []*genai.FunctionDeclaration {
	out := make([]*genai.FunctionDeclaration, 0, len(defs))
	for _, def := range defs {
		decl := &genai.FunctionDeclaration{
			Name:        def.Name,
			Description: def.Description,
		}
		if len(def.Params) > 0 {
			schema := &genai.Schema{
				Type:       genai.TypeObject,
				Properties: make(map[string]*genai.Schema, len(def.Params)),
			}
			for _, p := range def.Params {
				schema.Properties[p.Name] = &genai.Schema{
					Type:        genai.TypeString,
					Description: p.Description,
				}
				if p.Required {
					schema.Required = append(schema.Required, p.Name)
				}
			}
			decl.Parameters = schema
		}
		out = append(out, decl)
	}
	return out
}

// functionResponse packages a tool result for the model.
func functionResponse(name string, res tools.Result) genai.FunctionResponse {
	payload := map[string]any{
		"result":  res.Text,
		"outcome": res.Outcome,
	}
	if res.Available != nil {
		payload["available"] = *res.Available
	}
	if res.AppointmentID != "" {
		payload["appointment_id"] = res.AppointmentID
	}
	return genai.FunctionResponse{Name: name, Response: payload}
}
