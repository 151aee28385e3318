package templates

import (
	"bytes"
	"fmt"
	"html/template"
)

var welcomeHTML = template.Must(template.New("welcome").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #222;">
  <h2>Welcome, {{.Name}}!</h2>
  <p>An account has been created for <strong>{{.Email}}</strong>.</p>
  <p>You can sign in and finish setting up your profile here:</p>
  <p><a href="{{.WebAppURL}}">{{.WebAppURL}}</a></p>
</body>
</html>`))

// Render renders a named template into subject, text, and HTML bodies.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	switch name {
	case "welcome":
		var buf bytes.Buffer
		if err := welcomeHTML.Execute(&buf, data); err != nil {
			return "", "", "", err
		}
		subject = "Your account is ready"
		text = fmt.Sprintf("An account has been created for %v. Sign in at %v.", data["Email"], data["WebAppURL"])
		return subject, text, buf.String(), nil
	default:
		return "", "", "", fmt.Errorf("unknown template %q", name)
	}
}
