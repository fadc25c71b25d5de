package indicator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbright/director/internal/launchargs"
)

func TestResolveLocaleDefaultsToEnglish(t *testing.T) {
	require.Equal(t, localeEnglish, resolveLocale("en_US.UTF-8"))
	require.Equal(t, localeEnglish, resolveLocale("fr_FR.UTF-8"))
}

func TestMessagesDescribeEachKind(t *testing.T) {
	msg := indicatorMessages(localeEnglish)
	require.Equal(t, "Opening doc/1", msg.describe(launchargs.DeepLink("doc/1")))
	require.Equal(t, "Relaunched with -OpenMenu", msg.describe(launchargs.Plain("-OpenMenu")))
	require.Equal(t, "Already running", msg.describe(launchargs.Parsed{}))
	require.Equal(t, "Running instance did not respond", msg.errorText)
}
