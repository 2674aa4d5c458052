package assistant

import (
	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

const (
	ToolManageAgenda   = "manage_agenda"
	ToolManageSchedule = "manage_schedule"
	ToolManageNotes    = "manage_notes"
	ToolManageHobbies  = "manage_hobbies"
	ToolDeleteContent  = "delete_content"
)

type taskArgs struct {
	Tasks []struct {
		Name        string  `json:"name"`
		Recommended string  `json:"recommended"`
		Deadline    string  `json:"deadline"`
		Criticality float64 `json:"criticality"`
		Category    string  `json:"category"`
	} `json:"tasks"`
}

type scheduleArgs struct {
	Events []struct {
		Day      string `json:"day"`
		Start    string `json:"start"`
		End      string `json:"end"`
		Activity string `json:"activity"`
		Kind     string `json:"kind"`
		Modality string `json:"modality"`
	} `json:"events"`
}

type notesArgs struct {
	Notes []string `json:"notes"`
}

type hobbiesArgs struct {
	Hobbies []string `json:"hobbies"`
}

type deleteArgs struct {
	Kind     string   `json:"kind"`
	Criteria []string `json:"criteria"`
}

func stringList(desc string) jsonschema.Definition {
	return jsonschema.Definition{
		Type:        jsonschema.Array,
		Description: desc,
		Items:       &jsonschema.Definition{Type: jsonschema.String},
	}
}

// Tools declares the functions the model may call.
func Tools() []openai.Tool {
	defs := []openai.FunctionDefinition{
		{
			Name:        ToolManageAgenda,
			Description: "Add academic or personal tasks taken from a syllabus, document or command.",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"tasks": {
						Type: jsonschema.Array,
						Items: &jsonschema.Definition{
							Type: jsonschema.Object,
							Properties: map[string]jsonschema.Definition{
								"name":        {Type: jsonschema.String},
								"recommended": {Type: jsonschema.String, Description: "Suggested start date (YYYY-MM-DD)"},
								"deadline":    {Type: jsonschema.String, Description: "Final due date (YYYY-MM-DD)"},
								"criticality": {Type: jsonschema.Integer, Description: "Importance from 1 to 10"},
								"category":    {Type: jsonschema.String, Enum: []string{"high", "medium", "low", "hobby"}},
							},
							Required: []string{"name", "deadline", "criticality"},
						},
					},
				},
				Required: []string{"tasks"},
			},
		},
		{
			Name:        ToolManageSchedule,
			Description: "Add events to the weekly schedule.",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"events": {
						Type: jsonschema.Array,
						Items: &jsonschema.Definition{
							Type: jsonschema.Object,
							Properties: map[string]jsonschema.Definition{
								"day":      {Type: jsonschema.String, Description: "Monday, Tuesday, ..."},
								"start":    {Type: jsonschema.String, Description: "HH:MM (24h)"},
								"end":      {Type: jsonschema.String, Description: "HH:MM (24h)"},
								"activity": {Type: jsonschema.String},
								"kind":     {Type: jsonschema.String, Enum: []string{"class", "study", "break"}},
								"modality": {Type: jsonschema.String, Enum: []string{"virtual", "hybrid", "in-person"}},
							},
							Required: []string{"day", "start", "end", "activity", "kind"},
						},
					},
				},
				Required: []string{"events"},
			},
		},
		{
			Name:        ToolManageNotes,
			Description: "Save quick reminders, debts, errands or personal notes.",
			Parameters: jsonschema.Definition{
				Type:       jsonschema.Object,
				Properties: map[string]jsonschema.Definition{"notes": stringList("Note texts")},
				Required:   []string{"notes"},
			},
		},
		{
			Name:        ToolManageHobbies,
			Description: "Record leisure activities or hobbies.",
			Parameters: jsonschema.Definition{
				Type:       jsonschema.Object,
				Properties: map[string]jsonschema.Definition{"hobbies": stringList("Hobby names")},
				Required:   []string{"hobbies"},
			},
		},
		{
			Name:        ToolDeleteContent,
			Description: "Delete entries by name or keyword.",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"kind":     {Type: jsonschema.String, Enum: []string{"task", "schedule", "note", "hobby"}},
					"criteria": stringList("Names or fragments to delete"),
				},
				Required: []string{"kind", "criteria"},
			},
		},
	}

	tools := make([]openai.Tool, 0, len(defs))
	for i := range defs {
		tools = append(tools, openai.Tool{Type: openai.ToolTypeFunction, Function: &defs[i]})
	}
	return tools
}
