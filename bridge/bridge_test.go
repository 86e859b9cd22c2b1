package bridge

import (
	"errors"
	"testing"
	"time"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		fields []Field
		want   string
	}{
		{"no fields", nil, "msg"},
		{"plain", []Field{{"user", "alice"}, {"id", 42}}, "msg user=alice id=42"},
		{"quoted", []Field{{"q", "two words"}, {"empty", ""}}, `msg q="two words" empty=""`},
		{"error", []Field{{"error", errors.New("boom")}}, "msg error=boom"},
		{"stringer", []Field{{"d", 1500 * time.Millisecond}}, "msg d=1.5s"},
		{"float and bool", []Field{{"f", 0.25}, {"ok", true}}, "msg f=0.25 ok=true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format("msg", tt.fields); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}
