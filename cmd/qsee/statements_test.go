package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitStatements(t *testing.T) {
	tests := []struct {
		name     string
		script   string
		expected []string
	}{
		{
			name:     "empty",
			script:   "",
			expected: nil,
		},
		{
			name:   "setup script",
			script: "drop table foo;\ncreate table foo (id int, name char(20));\ninsert into foo values (1, 'a');\n",
			expected: []string{
				"drop table foo;",
				"create table foo (id int, name char(20));",
				"insert into foo values (1, 'a');",
			},
		},
		{
			name:     "multiline with comments",
			script:   "-- all rows\nselect *\n  from foo;\n",
			expected: []string{"select *\n  from foo;"},
		},
		{
			name:     "quoted semicolon",
			script:   "insert into foo values (2, 'a;b'); select 1",
			expected: []string{"insert into foo values (2, 'a;b');", "select 1;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, splitStatements(tt.script))
		})
	}
}

func TestIsComplete(t *testing.T) {
	r := require.New(t)

	r.True(isComplete("select * from foo;"))
	r.True(isComplete("select * from foo;  \n"))
	r.True(isComplete(`\dt`))
	r.False(isComplete("select * from foo"))
	r.False(isComplete("insert into foo values (1, 'a;"))
}
