package template

import (
	"bytes"
	"fmt"
	"os"
	"text/template"
)

// ExecuteSqlTemplate reads the SQL file at templatePath and renders it with
// params. Missing keys are an error so that an unbound {{.Table}} never
// reaches the database.
func ExecuteSqlTemplate(templatePath string, params map[string]any) (string, error) {
	content, err := ReadSqlTemplate(templatePath)
	if err != nil {
		return "", err
	}
	return ExecuteSql(templatePath, content, params)
}

// ExecuteSql renders an in-memory SQL template. name is only used in errors.
func ExecuteSql(name, content string, params map[string]any) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(content)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, params); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}

// ReadSqlTemplate reads a SQL template file and returns its contents as a string
func ReadSqlTemplate(templatePath string) (string, error) {
	content, err := os.ReadFile(templatePath)
	if err != nil {
		return "", fmt.Errorf("failed to read template file: %w", err)
	}
	return string(content), nil
}
