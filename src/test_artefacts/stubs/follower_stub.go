package stubs

import (
	"time"

	"followerspoc/src/domain/entities"

	"github.com/brianvoe/gofakeit/v6"
)

type FollowerStub struct {
	follower entities.Follower
}

func NewFollowerStub() FollowerStub {
	now := time.Now().UTC()

	follower := entities.Follower{
		ID:            gofakeit.Int64(),
		SenderType:    "user",
		SenderID:      gofakeit.UUID(),
		RecipientType: "user",
		RecipientID:   gofakeit.UUID(),
		Status:        entities.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	return FollowerStub{follower: follower}
}

func (fs FollowerStub) WithSender(ref entities.Ref) FollowerStub {
	fs.follower.SenderType = ref.Type
	fs.follower.SenderID = ref.ID
	return fs
}

func (fs FollowerStub) WithRecipient(ref entities.Ref) FollowerStub {
	fs.follower.RecipientType = ref.Type
	fs.follower.RecipientID = ref.ID
	return fs
}

func (fs FollowerStub) WithStatus(status entities.FollowStatus) FollowerStub {
	fs.follower.Status = status
	return fs
}

func (fs FollowerStub) Get() entities.Follower {
	return fs.follower
}
