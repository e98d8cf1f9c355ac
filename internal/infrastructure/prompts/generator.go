package prompts

import (
	"bytes"
	"text/template"

	"gui-agent/internal/application/port/output"
)

type PrimitiveInfo struct {
	Name        string
	Description string
}

type RolePromptData struct {
	Primitives []PrimitiveInfo
}

// GenerateRolePrompt renders a role template with the primitives the Action
// Runner will accept, in registry order.
func GenerateRolePrompt(name, baseTemplate string, registry output.PrimitiveRegistry) (string, error) {
	all := registry.All()
	infos := make([]PrimitiveInfo, 0, len(all))
	for _, p := range all {
		infos = append(infos, PrimitiveInfo{
			Name:        string(p.Name()),
			Description: p.Description(),
		})
	}

	tmpl, err := template.New(name).Option("missingkey=error").Parse(baseTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, RolePromptData{Primitives: infos}); err != nil {
		return "", err
	}

	return buf.String(), nil
}
