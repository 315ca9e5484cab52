package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/billing-engine/generic"
)

func TestMemory_LoadSave(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	doc, err := m.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, doc)

	in := []byte(`{"clients":[]}`)
	require.NoError(t, m.Save(ctx, "alice", in))
	in[0] = 'X'

	doc, err = m.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, `{"clients":[]}`, string(doc))

	doc[0] = 'Y'
	again, _ := m.Load(ctx, "alice")
	assert.Equal(t, byte('{'), again[0])
}

func TestMemory_ListUsers(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.Save(ctx, "carol", nil))
	require.NoError(t, m.Save(ctx, "alice", nil))

	users, err := m.ListUsers(ctx)

	require.NoError(t, err)
	assert.Equal(t, []generic.UserID{"alice", "carol"}, users)
}
