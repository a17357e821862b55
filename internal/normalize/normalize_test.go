package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"Éric O'Conner  ", "eric o'conner"},
		{"eric o'conner", "eric o'conner"},
		{"  ATHLÉTIC   CLUB   D'ORLÉANS ", "athletic club d'orleans"},
		{"Müller-Lefèvre", "muller-lefevre"},
		{"", ""},
		{"   ", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Name(tc.in), "input %q", tc.in)
	}
}

func TestNameIsIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{"Éric O'Conner  ", "Zoë   VAN DER Berg", "plain name"}
	for _, in := range inputs {
		once := Name(in)
		assert.Equal(t, once, Name(once), "re-normalizing %q must be a no-op", in)
	}
}
