package workflow

import (
	"reflect"
	"testing"

	"github.com/growship/commerce_backend/models"
)

func TestFilterRecipients(t *testing.T) {
	cases := []struct {
		name    string
		ids     []string
		exclude string
		want    []string
	}{
		{"dedupes preserving order", []string{"a", "b", "a", "c", "b"}, "", []string{"a", "b", "c"}},
		{"excluded user never appears", []string{"a", "x", "b", "x"}, "x", []string{"a", "b"}},
		{"empty ids dropped", []string{"", "a", ""}, "", []string{"a"}},
		{"all excluded", []string{"x", "x"}, "x", []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterRecipients(tc.ids, tc.exclude)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("FilterRecipients() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNarrowRoles(t *testing.T) {
	enabled := []models.RoleName{models.RoleBrandAdmin, models.RoleBrandUser, models.RoleDistributorAdmin}

	t.Run("no subset keeps all", func(t *testing.T) {
		if got := narrowRoles(enabled, nil); !reflect.DeepEqual(got, enabled) {
			t.Errorf("narrowRoles() = %v, want %v", got, enabled)
		}
	})

	t.Run("subset intersects", func(t *testing.T) {
		subset := []models.RoleName{models.RoleBrandUser, models.RoleSuperAdmin}
		want := []models.RoleName{models.RoleBrandUser}
		if got := narrowRoles(enabled, subset); !reflect.DeepEqual(got, want) {
			t.Errorf("narrowRoles() = %v, want %v", got, want)
		}
	})

	t.Run("disjoint subset yields none", func(t *testing.T) {
		subset := []models.RoleName{models.RoleManufacturer}
		if got := narrowRoles(enabled, subset); len(got) != 0 {
			t.Errorf("narrowRoles() = %v, want empty", got)
		}
	})
}

func TestEffectiveFrequency(t *testing.T) {
	nt := &models.NotificationType{DefaultFreq: models.FrequencyInstant}
	daily := models.FrequencyDaily

	t.Run("no preference uses type default", func(t *testing.T) {
		freq, enabled := effectiveFrequency(nt, nil)
		if !enabled || freq != models.FrequencyInstant {
			t.Errorf("got (%s, %v), want (instant, true)", freq, enabled)
		}
	})

	t.Run("disabled preference removes recipient", func(t *testing.T) {
		pref := &models.NotificationPreference{Enabled: false}
		if _, enabled := effectiveFrequency(nt, pref); enabled {
			t.Error("disabled preference should drop the recipient")
		}
	})

	t.Run("frequency override wins", func(t *testing.T) {
		pref := &models.NotificationPreference{Enabled: true, Frequency: &daily}
		freq, enabled := effectiveFrequency(nt, pref)
		if !enabled || freq != models.FrequencyDaily {
			t.Errorf("got (%s, %v), want (daily, true)", freq, enabled)
		}
	})

	t.Run("enabled preference without override keeps default", func(t *testing.T) {
		pref := &models.NotificationPreference{Enabled: true}
		freq, enabled := effectiveFrequency(nt, pref)
		if !enabled || freq != models.FrequencyInstant {
			t.Errorf("got (%s, %v), want (instant, true)", freq, enabled)
		}
	})
}
