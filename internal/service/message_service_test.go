package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessage(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	alice := w.users.add("alice")
	bob := w.users.add("bob")
	carol := w.users.add("carol")
	carol.IsActive = false

	t.Run("direct message is read by its sender", func(t *testing.T) {
		msg, err := w.messageService.SendMessage(ctx, alice.ID, SendMessageInput{
			RecipientID: &bob.ID,
			Content:     "  hello bob  ",
		})
		require.NoError(t, err)
		assert.Equal(t, "hello bob", msg.Content)
		assert.NotEmpty(t, msg.ClientID)
		assert.True(t, w.readMarks.hasRead(alice.ID, msg.ID))
		assert.False(t, w.readMarks.hasRead(bob.ID, msg.ID))
	})

	t.Run("same client id returns the existing message", func(t *testing.T) {
		first, err := w.messageService.SendMessage(ctx, alice.ID, SendMessageInput{ClientID: "c-1", RecipientID: &bob.ID, Content: "once"})
		require.NoError(t, err)
		again, err := w.messageService.SendMessage(ctx, alice.ID, SendMessageInput{ClientID: "c-1", RecipientID: &bob.ID, Content: "once"})
		require.NoError(t, err)
		assert.Equal(t, first.ID, again.ID)
	})

	t.Run("invalid recipients", func(t *testing.T) {
		missing := uint(404)
		for _, recipient := range []*uint{nil, &missing, &carol.ID} {
			_, err := w.messageService.SendMessage(ctx, alice.ID, SendMessageInput{RecipientID: recipient, Content: "x"})
			assert.ErrorIs(t, err, ErrInvalidRecipient)
		}
	})

	t.Run("long content is truncated", func(t *testing.T) {
		t.Setenv("MAX_MESSAGE_LENGTH", "5")
		msg, err := w.messageService.SendMessage(ctx, alice.ID, SendMessageInput{RecipientID: &bob.ID, Content: strings.Repeat("é", 10)})
		require.NoError(t, err)
		assert.Equal(t, "ééééé", msg.Content)
	})
}

func TestSendGroupMessage_RequiresMembership(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	alice := w.users.add("alice")
	bob := w.users.add("bob")
	g := w.groups.add("general", alice, false)

	_, err := w.messageService.SendGroupMessage(ctx, bob.ID, g.ID, SendMessageInput{Content: "hi"})
	assert.ErrorIs(t, err, ErrNotGroupMember)

	msg, err := w.messageService.SendGroupMessage(ctx, alice.ID, g.ID, SendMessageInput{Content: "hi"})
	require.NoError(t, err)
	require.NotNil(t, msg.GroupID)
	assert.Equal(t, g.ID, *msg.GroupID)
}

func TestUpdateReadFlags(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	alice := w.users.add("alice")
	bob := w.users.add("bob")
	eve := w.users.add("eve")
	first := w.messages.direct(alice, bob)
	second := w.messages.direct(alice, bob)
	private := w.messages.group(alice, w.groups.add("secret", alice, true))

	t.Run("rejects unknown flag and op", func(t *testing.T) {
		_, err := w.messageService.UpdateReadFlags(ctx, bob.ID, []uint{first.ID}, FlagOpAdd, "starred")
		assert.ErrorIs(t, err, ErrUnsupportedFlag)
		_, err = w.messageService.UpdateReadFlags(ctx, bob.ID, []uint{first.ID}, "remove", FlagRead)
		assert.ErrorIs(t, err, ErrUnsupportedFlagOp)
		assert.False(t, w.readMarks.hasRead(bob.ID, first.ID))
	})

	t.Run("one inaccessible id writes nothing", func(t *testing.T) {
		before := w.readMarks.writes
		_, err := w.messageService.UpdateReadFlags(ctx, eve.ID, []uint{first.ID, private.ID}, FlagOpAdd, FlagRead)
		assert.ErrorIs(t, err, ErrInvalidMessage)
		assert.Equal(t, before, w.readMarks.writes)
	})

	t.Run("duplicates are collapsed", func(t *testing.T) {
		ids, err := w.messageService.UpdateReadFlags(ctx, bob.ID, []uint{first.ID, second.ID, first.ID}, FlagOpAdd, FlagRead)
		require.NoError(t, err)
		assert.Equal(t, []uint{first.ID, second.ID}, ids)
		assert.True(t, w.readMarks.hasRead(bob.ID, first.ID))
		assert.True(t, w.readMarks.hasRead(bob.ID, second.ID))
	})
}

func TestMarkConversationRead(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	alice := w.users.add("alice")
	bob := w.users.add("bob")
	in1 := w.messages.direct(alice, bob)
	in2 := w.messages.direct(alice, bob)
	out := w.messages.direct(bob, alice)

	n, err := w.messageService.MarkConversationRead(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, w.readMarks.hasRead(bob.ID, in1.ID))
	assert.True(t, w.readMarks.hasRead(bob.ID, in2.ID))
	assert.False(t, w.readMarks.hasRead(bob.ID, out.ID))
}

func TestMarkGroupRead(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	alice := w.users.add("alice")
	bob := w.users.add("bob")
	eve := w.users.add("eve")
	g := w.groups.add("general", alice, false, bob)

	last, err := w.messageService.MarkGroupRead(ctx, bob.ID, g.ID, 0)
	require.NoError(t, err)
	assert.Zero(t, last, "empty group has nothing to mark")

	m1 := w.messages.group(alice, g)
	m2 := w.messages.group(alice, g)
	m3 := w.messages.group(alice, g)

	_, err = w.messageService.MarkGroupRead(ctx, eve.ID, g.ID, 0)
	assert.ErrorIs(t, err, ErrNotGroupMember)

	last, err = w.messageService.MarkGroupRead(ctx, bob.ID, g.ID, m2.ID)
	require.NoError(t, err)
	assert.Equal(t, m2.ID, last)
	assert.True(t, w.readMarks.hasRead(bob.ID, m1.ID))
	assert.True(t, w.readMarks.hasRead(bob.ID, m2.ID))
	assert.False(t, w.readMarks.hasRead(bob.ID, m3.ID))

	last, err = w.messageService.MarkGroupRead(ctx, bob.ID, g.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, m3.ID, last)

	// Watermark never moves back.
	_, err = w.messageService.MarkGroupRead(ctx, bob.ID, g.ID, m1.ID)
	require.NoError(t, err)
	state, err := w.messageService.GetGroupReadState(ctx, bob.ID, g.ID)
	require.NoError(t, err)
	assert.Equal(t, m3.ID, state.LastReadMessageID)

	ids, err := w.receipts.GetReadReceipts(ctx, alice.ID, m3.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{bob.ID}, ids)
}

func TestGetGroupReadState_DefaultsToZero(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	alice := w.users.add("alice")
	bob := w.users.add("bob")
	g := w.groups.add("general", alice, false)

	state, err := w.messageService.GetGroupReadState(ctx, alice.ID, g.ID)
	require.NoError(t, err)
	assert.Zero(t, state.LastReadMessageID)

	_, err = w.messageService.GetGroupReadState(ctx, bob.ID, g.ID)
	assert.ErrorIs(t, err, ErrNotGroupMember)
}

func TestMarkGroupRead_CapsAtLatestMessage(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	alice := w.users.add("alice")
	bob := w.users.add("bob")
	g := w.groups.add("general", alice, false, bob)
	m1 := w.messages.group(alice, g)

	last, err := w.messageService.MarkGroupRead(ctx, bob.ID, g.ID, 4000000000)
	require.NoError(t, err)
	assert.Equal(t, m1.ID, last)

	m2 := w.messages.group(alice, g)
	state, err := w.messageService.GetGroupReadState(ctx, bob.ID, g.ID)
	require.NoError(t, err)
	assert.Equal(t, m1.ID, state.LastReadMessageID)
	assert.False(t, w.readMarks.hasRead(bob.ID, m2.ID))

	last, err = w.messageService.MarkGroupRead(ctx, bob.ID, g.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, m2.ID, last)
	assert.True(t, w.readMarks.hasRead(bob.ID, m2.ID))
}
