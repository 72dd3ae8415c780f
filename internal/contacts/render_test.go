package contacts

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/onurcolak/contact-dispatch-service/environments"
)

func TestRenderMessage(t *testing.T) {
	got := RenderMessage("Hi {Name}, see you soon", "Ann")
	assert.Equal(t, "Hi Ann, see you soon", got)
	assert.Equal(t, got, RenderMessage("Hi {Name}, see you soon", "Ann"))

	assert.Equal(t, "Ann and Ann", RenderMessage("{name} and {Name}", "Ann"))
	assert.Equal(t, "Hi Ann, table {table} {NAME}", RenderMessage("Hi {name}, table {table} {NAME}", "Ann"))
}

func TestRenderMessage_NameContainingPlaceholder(t *testing.T) {
	assert.Equal(t, "Hi {Name}!", RenderMessage("Hi {name}!", "{Name}"))
}

func TestTruncate(t *testing.T) {
	out, cut := Truncate("0123456789ABCDEFGHIJ", 10)
	assert.True(t, cut)
	assert.Equal(t, "0123456...", out)

	out, cut = Truncate("short", 10)
	assert.False(t, cut)
	assert.Equal(t, "short", out)

	out, cut = Truncate("abcdef", 2)
	assert.True(t, cut)
	assert.Equal(t, "ab", out)

	out, cut = Truncate(strings.Repeat("x", 50), 0)
	assert.False(t, cut)
	assert.Len(t, out, 50)
}

func TestTruncate_KeepsRunesWhole(t *testing.T) {
	out, cut := Truncate("héllo wörld", 6)
	assert.True(t, cut)
	assert.True(t, utf8.ValidString(out))
	assert.LessOrEqual(t, len(out), 6)
}

func TestPhonePolicy(t *testing.T) {
	strict := RequireExplicitCountryCode()
	got, err := strict.Normalize("+919876543210")
	assert.NoError(t, err)
	assert.Equal(t, "+919876543210", got)

	_, err = strict.Normalize("9876543210")
	assert.ErrorIs(t, err, ErrMissingCountryCode)

	lenient := PrependDefault("91")
	got, err = lenient.Normalize("09876543210")
	assert.NoError(t, err)
	assert.Equal(t, "+919876543210", got)

	_, err = lenient.Normalize("000")
	assert.ErrorIs(t, err, ErrMissingCountryCode)
}

func TestPolicyFromConfig(t *testing.T) {
	p, err := PolicyFromConfig(environments.DispatchConfig{PhonePolicy: environments.PhonePolicyRequireExplicit})
	assert.NoError(t, err)
	assert.Equal(t, "", p.DefaultCode)

	p, err = PolicyFromConfig(environments.DispatchConfig{
		PhonePolicy:        environments.PhonePolicyPrependDefault,
		DefaultCountryCode: "+44",
	})
	assert.NoError(t, err)
	assert.Equal(t, "+44", p.DefaultCode)
	assert.Equal(t, "prepend_default(+44)", p.String())

	_, err = PolicyFromConfig(environments.DispatchConfig{PhonePolicy: environments.PhonePolicyPrependDefault})
	assert.Error(t, err)

	_, err = PolicyFromConfig(environments.DispatchConfig{PhonePolicy: "guess"})
	assert.Error(t, err)
}
