package locale

import (
	"testing"

	"github.com/nicksnyder/go-i18n/v2/i18n"
)

var messageIDs = []string{
	"nav_previous", "nav_next", "amount_prompt", "balance_result", "deposit_success",
	"debit_success", "action_done", "invalid_selection", "invalid_amount",
	"insufficient_balance", "invalid_request", "system_error",
}

func TestBundlesDefineEveryMessage(t *testing.T) {
	bundles := map[string]string{"en": "en", "rw": "sw"}
	for lang, want := range bundles {
		localizer := Localizer(lang)
		for _, id := range messageIDs {
			msg, tag, err := localizer.LocalizeWithTag(&i18n.LocalizeConfig{
				MessageID:    id,
				TemplateData: map[string]interface{}{"Service": "S", "Amount": "1.00", "Option": "O"},
			})
			if err != nil {
				t.Fatalf("%s/%s: %v", lang, id, err)
			}
			if msg == "" {
				t.Fatalf("%s/%s: empty message", lang, id)
			}
			if tag.String() != want {
				t.Fatalf("%s/%s: resolved from %s", lang, id, tag)
			}
		}
	}
}

func TestUnknownLocaleFallsBackToEnglish(t *testing.T) {
	msg, err := Localizer("fr").Localize(&i18n.LocalizeConfig{MessageID: "nav_next"})
	if err != nil {
		t.Fatalf("localize: %v", err)
	}
	if msg != "n. Next" {
		t.Fatalf("expected English fallback, got %q", msg)
	}
}

func TestKinyarwandaMessages(t *testing.T) {
	msg, err := Localizer("rw").Localize(&i18n.LocalizeConfig{
		MessageID:    "amount_prompt",
		TemplateData: map[string]interface{}{"Service": "Ohereza amafaranga"},
	})
	if err != nil {
		t.Fatalf("localize: %v", err)
	}
	if msg != "Andika amafaranga ya Ohereza amafaranga:" {
		t.Fatalf("expected Kinyarwanda prompt, got %q", msg)
	}
}
