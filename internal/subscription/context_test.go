package subscription

import (
	"encoding/json"
	"math"
	"sync"
	"testing"

	"telephony-common/internal/phone"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type titleBar struct{ title string }

func (b *titleBar) SetTitle(s string) { b.title = s }

func intentWith(id any, label any) *Intent {
	in := NewIntent("settings.CallForwarding")
	if id != nil {
		in.PutExtra(ExtraSubscriptionID, id)
	}
	if label != nil {
		in.PutExtra(ExtraSubscriptionLabel, label)
	}
	return in
}

func TestFromIntent_MissingExtras(t *testing.T) {
	c := FromIntent(NewIntent("x"))
	assert.False(t, c.HasSubscriptionID())
	assert.Equal(t, NoSubscriptionID, c.SubscriptionID())
	assert.Equal(t, "", c.Label())

	assert.False(t, FromIntent(nil).HasSubscriptionID())
}

func TestFromIntent_SentinelIsNeverPresent(t *testing.T) {
	c := FromIntent(intentWith(-1, "Work"))
	assert.False(t, c.HasSubscriptionID())
	assert.Equal(t, "Work", c.Label())
}

func TestFromIntent_ReadsExtras(t *testing.T) {
	c := FromIntent(intentWith(2, "Personal"))
	assert.True(t, c.HasSubscriptionID())
	assert.Equal(t, 2, c.SubscriptionID())
	assert.Equal(t, "Personal", c.Label())

	// Zero is a real subscription id.
	assert.True(t, FromIntent(intentWith(0, nil)).HasSubscriptionID())
}

func TestFromIntent_MistypedExtrasDegrade(t *testing.T) {
	for _, id := range []any{"2", 2.5, true, int64(1) << 40, 1 << 40, math.MinInt32 - 1} {
		c := FromIntent(intentWith(id, 7))
		assert.False(t, c.HasSubscriptionID(), "%T %v", id, id)
		assert.Equal(t, "", c.Label())
	}
}

func TestFromIntent_JSONDecodedIntent(t *testing.T) {
	raw := `{"target":"a","extras":{"` + ExtraSubscriptionID + `":3,"` + ExtraSubscriptionLabel + `":"Travel"}}`
	var in Intent
	require.NoError(t, json.Unmarshal([]byte(raw), &in))
	c := FromIntent(&in)
	assert.Equal(t, 3, c.SubscriptionID())
	assert.Equal(t, "Travel", c.Label())

	in.PutExtra(ExtraSubscriptionID, json.Number("4"))
	assert.Equal(t, 4, FromIntent(&in).SubscriptionID())
}

func TestIntent_OmitsAbsentFields(t *testing.T) {
	out := FromIntent(NewIntent("x")).Intent("settings.Next")
	assert.Equal(t, "settings.Next", out.Target)
	assert.False(t, out.HasExtra(ExtraSubscriptionID))
	assert.False(t, out.HasExtra(ExtraSubscriptionLabel))

	out = FromIntent(intentWith(5, "")).Intent("settings.Next")
	assert.True(t, out.HasExtra(ExtraSubscriptionID))
	assert.False(t, out.HasExtra(ExtraSubscriptionLabel))

	out = FromIntent(intentWith(nil, "Work")).Intent("settings.Next")
	assert.False(t, out.HasExtra(ExtraSubscriptionID))
	assert.True(t, out.HasExtra(ExtraSubscriptionLabel))
}

func TestIntent_ForwardsBoth(t *testing.T) {
	out := FromIntent(intentWith(5, "Work")).Intent("settings.Next")
	again := FromIntent(out)
	assert.Equal(t, 5, again.SubscriptionID())
	assert.Equal(t, "Work", again.Label())
}

func TestAttachTo_WritesBothUnconditionally(t *testing.T) {
	in := &Intent{Target: "x"}
	AttachTo(in, Info{ID: 11, DisplayName: ""})
	assert.Equal(t, 11, in.IntExtra(ExtraSubscriptionID, NoSubscriptionID))
	label, ok := in.StringExtra(ExtraSubscriptionLabel)
	assert.True(t, ok)
	assert.Equal(t, "", label)

	AttachTo(in, Info{ID: 12, DisplayName: "Roaming"})
	c := FromIntent(in)
	assert.Equal(t, 12, c.SubscriptionID())
	assert.Equal(t, "Roaming", c.Label())
}

func TestPhone_ResolvesBySlotOrDefault(t *testing.T) {
	reg := phone.NewRegistry(0)
	reg.Add(phone.Phone{Slot: 0, Name: "sim1"})
	reg.Add(phone.Phone{Slot: 1, Name: "sim2"})
	require.NoError(t, reg.Bind(9, 1))

	assert.Equal(t, "sim2", FromIntent(intentWith(9, nil)).Phone(reg).Name)
	assert.Equal(t, "sim1", FromIntent(NewIntent("x")).Phone(reg).Name)
}

func TestApplyTitle(t *testing.T) {
	strs := Strings{1: "Call settings (%s)", 2: "No verb", 3: "%s and %s"}

	bar := &titleBar{title: "old"}
	FromIntent(intentWith(1, "Work")).ApplyTitle(bar, strs, 1)
	assert.Equal(t, "Call settings (Work)", bar.title)

	bar = &titleBar{title: "old"}
	FromIntent(intentWith(1, "")).ApplyTitle(bar, strs, 1)
	assert.Equal(t, "old", bar.title)

	assert.NotPanics(t, func() { FromIntent(intentWith(1, "Work")).ApplyTitle(nil, strs, 1) })

	// Malformed templates produce whatever fmt produces.
	FromIntent(intentWith(1, "Work")).ApplyTitle(bar, strs, 2)
	assert.Equal(t, "No verb%!(EXTRA string=Work)", bar.title)
	FromIntent(intentWith(1, "Work")).ApplyTitle(bar, strs, 3)
	assert.Equal(t, "Work and %!s(MISSING)", bar.title)
}

func TestContexts_AreIndependent(t *testing.T) {
	var wg sync.WaitGroup
	results := make([]*Context, 50)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = FromIntent(intentWith(i, "label"))
		}(i)
	}
	wg.Wait()
	for i, c := range results {
		require.Equal(t, i, c.SubscriptionID())
	}
}

func TestIntExtra_IntAtInt32Bounds(t *testing.T) {
	in := NewIntent("x")
	in.PutExtra("max", math.MaxInt32)
	in.PutExtra("min", math.MinInt32)
	in.PutExtra("wide", math.MaxInt32+1)

	assert.Equal(t, math.MaxInt32, in.IntExtra("max", -1))
	assert.Equal(t, math.MinInt32, in.IntExtra("min", -1))
	assert.Equal(t, -1, in.IntExtra("wide", -1))
}
