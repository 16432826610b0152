package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeMarkdown(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"specials", "a_b*c`d[e", `a\_b\*c\` + "`" + `d\[e`},
		{"plain", "Winter jacket 2500.00", "Winter jacket 2500.00"},
		{"v2 only chars kept", "1.5 (new)!", "1.5 (new)!"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, EscapeMarkdown(tc.in))
		})
	}
}
