package subscription

import (
	"fmt"

	"telephony-common/internal/phone"
)

// NoSubscriptionID means the intent did not name a subscription.
const NoSubscriptionID = -1

// Extra keys. Components on both ends of an intent depend on these exact names.
const (
	ExtraSubscriptionID    = "com.android.phone.settings.SubscriptionInfoHelper.SubscriptionId"
	ExtraSubscriptionLabel = "com.android.phone.settings.SubscriptionInfoHelper.SubscriptionLabel"
)

// Info identifies a subscription and its user-facing name.
type Info struct {
	ID          int    `json:"subscription_id"`
	DisplayName string `json:"display_name"`
}

// Context carries the subscription a settings screen was opened for, so it can
// be forwarded to the next screen and shown in its title.
//
// Each Context owns its id and label; two contexts built from different
// intents never observe each other.
type Context struct {
	subID int
	label string
}

// FromIntent extracts the subscription id and label from in. Missing or
// mistyped extras leave the defaults in place.
func FromIntent(in *Intent) *Context {
	c := &Context{subID: NoSubscriptionID}
	if in == nil {
		return c
	}
	c.subID = in.IntExtra(ExtraSubscriptionID, NoSubscriptionID)
	c.label, _ = in.StringExtra(ExtraSubscriptionLabel)
	return c
}

func (c *Context) HasSubscriptionID() bool { return c.subID != NoSubscriptionID }

func (c *Context) SubscriptionID() int { return c.subID }

func (c *Context) Label() string { return c.label }

// Intent builds an intent for target carrying this context's id and label.
// The id is included only when present and the label only when non-empty.
func (c *Context) Intent(target string) *Intent {
	in := NewIntent(target)
	if c.HasSubscriptionID() {
		in.PutExtra(ExtraSubscriptionID, c.subID)
	}
	if c.label != "" {
		in.PutExtra(ExtraSubscriptionLabel, c.label)
	}
	return in
}

// AttachTo writes sub's id and display name into in, unconditionally.
func AttachTo(in *Intent, sub Info) {
	in.PutExtra(ExtraSubscriptionID, sub.ID)
	in.PutExtra(ExtraSubscriptionLabel, sub.DisplayName)
}

// PhoneLookup resolves subscriptions to phones.
type PhoneLookup interface {
	PhoneID(subID int) int
	Phone(slot int) phone.Phone
	Default() phone.Phone
}

// Phone returns the phone for this subscription's slot, or the default phone
// when the context has no subscription.
func (c *Context) Phone(l PhoneLookup) phone.Phone {
	if c.HasSubscriptionID() {
		return l.Phone(l.PhoneID(c.subID))
	}
	return l.Default()
}

// TitleSetter is anything with a settable title.
type TitleSetter interface {
	SetTitle(title string)
}

// StringTable resolves string resources by id.
type StringTable interface {
	String(id int) string
}

// Strings is a map-backed StringTable. Missing ids resolve to "".
type Strings map[int]string

func (s Strings) String(id int) string { return s[id] }

// ApplyTitle formats the template at templateID with the label and sets it as
// chrome's title. The template is expected to hold one %s verb. Nothing
// happens when chrome is nil or the label is empty, leaving the old title.
func (c *Context) ApplyTitle(chrome TitleSetter, res StringTable, templateID int) {
	if chrome == nil || c.label == "" {
		return
	}
	chrome.SetTitle(fmt.Sprintf(res.String(templateID), c.label))
}
