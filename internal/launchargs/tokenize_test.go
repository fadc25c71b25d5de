package launchargs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr string
	}{
		{name: "empty", input: "", want: nil},
		{name: "simple", input: "hyprctl dispatch focuswindow", want: []string{"hyprctl", "dispatch", "focuswindow"}},
		{name: "quoted spaces", input: `mycmd --name "hello world"`, want: []string{"mycmd", "--name", "hello world"}},
		{name: "single quote", input: `mycmd --name 'hello world'`, want: []string{"mycmd", "--name", "hello world"}},
		{name: "escaped space", input: `mycmd hello\ world`, want: []string{"mycmd", "hello world"}},
		{name: "empty quoted token", input: `mycmd "" end`, want: []string{"mycmd", "", "end"}},
		{name: "windows path backslashes", input: `C:\Games\app.exe -x`, want: []string{`C:\Games\app.exe`, "-x"}},
		{name: "escaped quote in double quotes", input: `say "a \"b\" c"`, want: []string{"say", `a "b" c`}},
		{name: "backslash literal in single quotes", input: `say 'a\b'`, want: []string{"say", `a\b`}},
		{name: "unterminated quote", input: `mycmd "oops`, wantErr: "unterminated quote"},
		{name: "unterminated escape", input: `mycmd hello\`, wantErr: "unterminated escape"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Split(tc.input)
			if tc.wantErr != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestTokenizeIsLenient(t *testing.T) {
	require.Equal(t, []string{"app", "oops tail"}, Tokenize(`app "oops tail`))
	require.Equal(t, []string{"app", `end\`}, Tokenize(`app end\`))
}

func TestJoinRoundTrips(t *testing.T) {
	cases := [][]string{
		{"-OpenMenu", "-Foo", "bar"},
		{"myscheme://path/sub/"},
		{"hello world", "it's", `say "hi"`},
		{`C:\Program Files\App`, `trailing\`},
		{"", "x"},
		{"tab\there", "line\nbreak"},
		{"ünïcödé", "路径"},
	}

	for _, argv := range cases {
		require.Equal(t, argv, Tokenize(Join(argv)), Join(argv))
	}
	require.Equal(t, "", Join(nil))
	require.Nil(t, Tokenize(Join(nil)))
}
