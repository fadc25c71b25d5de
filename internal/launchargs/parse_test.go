package launchargs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCommandLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Parsed
	}{
		{name: "deep link trailing slash", input: "app.exe myscheme://path/sub/", want: DeepLink("path/sub")},
		{name: "plain flags", input: "app.exe -OpenMenu -Foo bar", want: Plain("-OpenMenu -Foo bar")},
		{name: "executable only", input: "app.exe", want: Parsed{}},
		{name: "empty", input: "", want: Parsed{}},
		{name: "whitespace only", input: "   \t ", want: Parsed{}},
		{name: "quoted executable path", input: `"C:\Program Files\App\app.exe" -Windowed`, want: Plain("-Windowed")},
		{name: "deep link stops scan", input: "app -a myapp://first -b other://second", want: DeepLink("first")},
		{name: "only one trailing slash stripped", input: "app myapp://room//", want: DeepLink("room/")},
		{name: "bare scheme", input: "app myapp://", want: DeepLink("")},
		{name: "marker inside flag", input: "app --url=myapp://lobby/42", want: DeepLink("lobby/42")},
		{name: "suffix keeps later markers", input: "app a://b://c", want: DeepLink("b://c")},
		{name: "quoted tokens normalized", input: `app "hello   world" 'x'`, want: Plain("hello   world x")},
		{name: "collapses separators", input: "app   -a    -b", want: Plain("-a -b")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ParseCommandLine(tc.input))
		})
	}
}

func TestParseArgumentsDoesNotSkipFirstToken(t *testing.T) {
	require.Equal(t, Plain("-OpenMenu -Foo bar"), ParseArguments("-OpenMenu -Foo bar"))
	require.Equal(t, DeepLink("path/sub"), ParseArguments("myscheme://path/sub/"))
	require.Equal(t, Parsed{}, ParseArguments(""))
	require.Equal(t, Plain("app.exe"), ParseArguments("app.exe"))
}

func TestParsedString(t *testing.T) {
	require.Equal(t, "empty", Parsed{}.String())
	require.Equal(t, "plain:-a", Plain("-a").String())
	require.Equal(t, "deeplink:x/y", DeepLink("x/y").String())
	require.True(t, Parsed{}.IsEmpty())
	require.False(t, Plain("").IsEmpty())
}
