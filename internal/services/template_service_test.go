package services

import (
	"errors"
	"strings"
	"testing"
)

func TestTemplateService_GetTemplate(t *testing.T) {
	service := NewTemplateService()

	tests := []struct {
		name     string
		role     EditorRole
		kind     TemplateKind
		contains string
		wantErr  error
	}{
		{
			name:     "statement basic",
			role:     RoleStatementEditor,
			kind:     TemplateBasic,
			contains: "Describe the problem here",
		},
		{
			name:     "statement advanced",
			role:     RoleStatementEditor,
			kind:     TemplateAdvanced,
			contains: "Two Sum",
		},
		{
			name:     "solution basic",
			role:     RoleSolutionEditor,
			kind:     TemplateBasic,
			contains: "Explain the approach here",
		},
		{
			name:     "solution advanced",
			role:     RoleSolutionEditor,
			kind:     TemplateAdvanced,
			contains: "Hash Map",
		},
		{
			name:    "unknown role",
			role:    EditorRole("hints"),
			kind:    TemplateBasic,
			wantErr: ErrUnknownEditorRole,
		},
		{
			name:    "unknown kind",
			role:    RoleStatementEditor,
			kind:    TemplateKind("expert"),
			wantErr: ErrUnknownTemplateKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl, err := service.GetTemplate(tt.role, tt.kind)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetTemplate failed: %v", err)
			}
			if !strings.Contains(tpl, tt.contains) {
				t.Errorf("Expected template to contain %q", tt.contains)
			}
		})
	}
}

func TestTemplateService_ListTemplates(t *testing.T) {
	service := NewTemplateService()

	templates := service.ListTemplates()
	if len(templates) != 4 {
		t.Fatalf("Expected 4 templates, got %d", len(templates))
	}

	// Every listed template must resolve.
	for _, info := range templates {
		if _, err := service.GetTemplate(info.Role, info.Kind); err != nil {
			t.Errorf("Listed template %s/%s does not resolve: %v", info.Role, info.Kind, err)
		}
		if info.Name == "" {
			t.Errorf("Template %s/%s has no name", info.Role, info.Kind)
		}
	}
}
