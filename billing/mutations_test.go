package billing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/billing-engine/billing"
	"github.com/warp/billing-engine/generic"
)

// twoClients has acme (two entries) and globex (one entry).
func twoClients() billing.Snapshot {
	s := billing.EmptySnapshot()
	s.Clients = []billing.Client{client("acme", 25), client("globex", billing.EndOfMonth)}
	s.WorkEntries = []billing.WorkEntry{
		entry("a-1", "acme", date(2024, 3, 1), 1, 1000, 0),
		entry("g-1", "globex", date(2024, 3, 2), 1, 2000, 0),
		entry("a-2", "acme", date(2024, 3, 3), 1, 3000, 0),
	}
	return s
}

func TestDeleteClient_CascadesToEntries(t *testing.T) {
	// GIVEN a snapshot with two clients
	before := twoClients()

	// WHEN deleting acme
	after, err := billing.DeleteClient("acme")(before)

	// THEN acme and its entries are gone and the input is unchanged
	require.NoError(t, err)
	require.Len(t, after.Clients, 1)
	assert.Equal(t, "globex", after.Clients[0].ID)
	assert.Equal(t, []string{"g-1"}, ids(after.WorkEntries))

	assert.Len(t, before.Clients, 2)
	assert.Len(t, before.WorkEntries, 3)
}

func TestDeleteClient_NotFound(t *testing.T) {
	_, err := billing.DeleteClient("ghost")(twoClients())
	assert.ErrorIs(t, err, generic.ErrClientNotFound)
}

func TestAddClient(t *testing.T) {
	before := twoClients()

	after, err := billing.AddClient(client("initech", 10))(before)
	require.NoError(t, err)
	assert.Len(t, after.Clients, 3)
	assert.Len(t, before.Clients, 2)

	_, err = billing.AddClient(client("acme", 10))(before)
	assert.ErrorIs(t, err, generic.ErrDuplicateID)

	_, err = billing.AddClient(client("bad", 0))(before)
	assert.ErrorIs(t, err, generic.ErrValidation)

	_, err = billing.AddClient(billing.Client{ID: "nameless", ClosingDay: 10})(before)
	assert.ErrorIs(t, err, generic.ErrValidation)
}

func TestUpdateClient(t *testing.T) {
	before := twoClients()
	changed := client("acme", billing.EndOfMonth)
	changed.Name = "Acme Holdings"

	after, err := billing.UpdateClient(changed)(before)

	require.NoError(t, err)
	assert.Equal(t, "Acme Holdings", after.Clients[0].Name)
	assert.Equal(t, billing.EndOfMonth, after.Clients[0].ClosingDay)
	assert.Equal(t, "acme", before.Clients[0].Name)

	_, err = billing.UpdateClient(client("ghost", 10))(before)
	assert.ErrorIs(t, err, generic.ErrClientNotFound)
}

func TestAddWorkEntry(t *testing.T) {
	before := twoClients()

	after, err := billing.AddWorkEntry(entry("g-2", "globex", date(2024, 3, 9), 1, 1, 0))(before)
	require.NoError(t, err)
	assert.Equal(t, []string{"a-1", "g-1", "a-2", "g-2"}, ids(after.WorkEntries))

	_, err = billing.AddWorkEntry(entry("x", "ghost", date(2024, 3, 9), 1, 1, 0))(before)
	assert.ErrorIs(t, err, generic.ErrClientNotFound)

	_, err = billing.AddWorkEntry(entry("a-1", "acme", date(2024, 3, 9), 1, 1, 0))(before)
	assert.ErrorIs(t, err, generic.ErrDuplicateID)

	_, err = billing.AddWorkEntry(entry("neg", "acme", date(2024, 3, 9), -1, 1, 0))(before)
	assert.ErrorIs(t, err, generic.ErrValidation)

	_, err = billing.AddWorkEntry(entry("undated", "acme", generic.Date{}, 1, 1, 0))(before)
	assert.ErrorIs(t, err, generic.ErrValidation)
}

func TestUpdateWorkEntry_KeepsPosition(t *testing.T) {
	before := twoClients()
	changed := entry("g-1", "globex", date(2024, 3, 20), 2, 2000, 0)

	after, err := billing.UpdateWorkEntry(changed)(before)

	require.NoError(t, err)
	assert.Equal(t, []string{"a-1", "g-1", "a-2"}, ids(after.WorkEntries))
	assert.Equal(t, "2024-03-20", after.WorkEntries[1].Date.Key())
	assert.Equal(t, "2024-03-02", before.WorkEntries[1].Date.Key())

	_, err = billing.UpdateWorkEntry(entry("missing", "acme", date(2024, 3, 1), 1, 1, 0))(before)
	assert.ErrorIs(t, err, generic.ErrEntryNotFound)
}

func TestDeleteWorkEntry(t *testing.T) {
	after, err := billing.DeleteWorkEntry("g-1")(twoClients())
	require.NoError(t, err)
	assert.Equal(t, []string{"a-1", "a-2"}, ids(after.WorkEntries))

	_, err = billing.DeleteWorkEntry("missing")(twoClients())
	assert.ErrorIs(t, err, generic.ErrEntryNotFound)
}

func TestSetUserProfile(t *testing.T) {
	after, err := billing.SetUserProfile(billing.UserProfile{CompanyName: "Kato Works"})(twoClients())

	require.NoError(t, err)
	assert.Equal(t, "Kato Works", after.UserProfile.CompanyName)
	assert.Len(t, after.Clients, 2)
}

func TestReplaceSnapshot(t *testing.T) {
	replacement := billing.EmptySnapshot()
	replacement.Clients = []billing.Client{client("only", 15)}

	after, err := billing.ReplaceSnapshot(replacement)(twoClients())
	require.NoError(t, err)
	assert.Len(t, after.Clients, 1)
	assert.Empty(t, after.WorkEntries)

	replacement.Clients = append(replacement.Clients, client("only", 20))
	_, err = billing.ReplaceSnapshot(replacement)(twoClients())
	assert.ErrorIs(t, err, generic.ErrDuplicateID)
}

func TestSnapshotValidate_AcceptsDanglingEntries(t *testing.T) {
	s := billing.EmptySnapshot()
	s.WorkEntries = []billing.WorkEntry{entry("orphan", "deleted-client", date(2024, 3, 1), 1, 1, 0)}

	assert.NoError(t, s.Validate())
}
