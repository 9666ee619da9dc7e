package core

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpand(t *testing.T) {
	r := require.New(t)
	t.Setenv("QSEE_PROFILE_DIR", "/etc/qsee")
	cwd, err := os.Getwd()
	r.NoError(err)

	testCases := []struct {
		input    string
		expected string
	}{
		{"normal string", "normal string"},
		{"{{ env `HOME` }}", os.Getenv("HOME")},
		{"{{ env `QSEE_PROFILE_DIR` }}/.qs_profile", "/etc/qsee/.qs_profile"},
		{"{{ env `QSEE_UNSET_VARIABLE` `/tmp/qstor` }}", "/tmp/qstor"},
		{"{{ env `QSEE_PROFILE_DIR` `/tmp` }}", "/etc/qsee"},
		{"{{ cwd }}/.qs_profile", cwd + "/.qs_profile"},
		{"{{ exec `echo \"hello\nbuddy\" | grep buddy` }}", "buddy"},
		{"{{ exec `echo  profile` }}", "profile"},
	}

	for _, tc := range testCases {
		actual, err := expand(tc.input)
		r.NoError(err)

		r.Equal(tc.expected, actual)
	}
}

func TestConnectionParams_Expand(t *testing.T) {
	t.Setenv("QSEE_PROFILE_DIR", "/etc/qsee")

	params := &ConnectionParams{
		Name: "local",
		Type: "quickstep",
		URL:  `{{ env "QSEE_PROFILE_DIR" }}/.qs_profile`,
	}

	expanded := params.Expand()
	require.Equal(t, "/etc/qsee/.qs_profile", expanded.URL)
	require.Equal(t, "quickstep", expanded.Type)

	// broken templates are kept as they are
	broken := (&ConnectionParams{URL: "{{ env "}).Expand()
	require.Equal(t, "{{ env ", broken.URL)
}
