package editor

import (
	"reflect"
	"testing"
)

func TestCommandArgs(t *testing.T) {
	tests := []struct {
		name   string
		editor string
		line   int
		want   []string
	}{
		{"vim jumps to line", "vim", 12, []string{"vim", "+12", "focus.md"}},
		{"absolute nvim path", "/usr/bin/nvim", 3, []string{"/usr/bin/nvim", "+3", "focus.md"}},
		{"no line", "vim", 0, []string{"vim", "focus.md"}},
		{"code keeps its flags", "code --wait", 7, []string{"code", "--wait", "--goto", "focus.md:7"}},
		{"unknown editor ignores the line", "ed", 7, []string{"ed", "focus.md"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Opener{Editor: tt.editor}
			cmd, err := o.Command("focus.md", tt.line)
			if err != nil {
				t.Fatalf("Command failed: %v", err)
			}
			if !reflect.DeepEqual(cmd.Args, tt.want) {
				t.Errorf("args = %q, want %q", cmd.Args, tt.want)
			}
		})
	}
}

func TestFindEditorPrefersEnvironment(t *testing.T) {
	t.Setenv("EDITOR", "hx")
	t.Setenv("VISUAL", "code")

	if got := NewOpener().findEditor(); got != "hx" {
		t.Errorf("findEditor() = %q, want hx", got)
	}
}
