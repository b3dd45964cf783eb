package followers_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"followerspoc/src/domain"
	"followerspoc/src/domain/entities"
	"followerspoc/src/services/followers"
)

var _ = Describe("FollowRequests", func() {
	var (
		f      *fixture
		ctx    context.Context
		sender entities.Ref
		target entities.Ref
	)

	BeforeEach(func() {
		ctx = context.Background()
		f = newFixture(followers.Config{})
		sender = f.addUser("requester")
		target = f.addUser("requested")
	})

	Context("when accepting a follow request", func() {
		When("a pending request exists", func() {
			It("moves the pair to ACCEPTED and emits an accepted event", func() {
				// ARRANGE
				_, err := f.service.Follow(ctx, sender, target)
				Expect(err).NotTo(HaveOccurred())
				f.notifier.Reset()

				// ACT
				accepted, err := f.service.AcceptRequest(ctx, target, sender)

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(accepted).To(BeTrue())

				isFollowing, err := f.service.IsFollowing(ctx, sender, target)
				Expect(err).NotTo(HaveOccurred())
				Expect(isFollowing).To(BeTrue())

				hasRequest, err := f.service.HasFollowRequestFrom(ctx, target, sender)
				Expect(err).NotTo(HaveOccurred())
				Expect(hasRequest).To(BeFalse())

				Expect(f.notifier.Events()).To(Equal([]domain.FollowEvent{domain.EventFollowRequestAccepted}))
			})

			It("keeps a single row for the pair", func() {
				// ARRANGE
				_, err := f.service.Follow(ctx, sender, target)
				Expect(err).NotTo(HaveOccurred())

				// ACT
				_, err = f.service.AcceptRequest(ctx, target, sender)
				Expect(err).NotTo(HaveOccurred())

				// ASSERT
				rows, err := f.store.Find(ctx, domain.FollowerFilter{Sender: &sender, Recipient: &target})
				Expect(err).NotTo(HaveOccurred())
				Expect(rows).To(HaveLen(1))
				Expect(rows[0].Status).To(Equal(entities.StatusAccepted))
			})
		})

		When("no request exists for the pair", func() {
			It("is a soft no-op without events", func() {
				// ACT
				accepted, err := f.service.AcceptRequest(ctx, target, sender)

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(accepted).To(BeFalse())
				Expect(f.notifier.Events()).To(BeEmpty())
			})
		})
	})

	Context("when denying a follow request", func() {
		When("a pending request exists", func() {
			It("moves the pair to DENIED and emits a denied event", func() {
				// ARRANGE
				_, err := f.service.Follow(ctx, sender, target)
				Expect(err).NotTo(HaveOccurred())
				f.notifier.Reset()

				// ACT
				denied, err := f.service.DenyRequest(ctx, target, sender)

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(denied).To(BeTrue())

				row, err := f.service.GetFollowing(ctx, sender, target)
				Expect(err).NotTo(HaveOccurred())
				Expect(row).NotTo(BeNil())
				Expect(row.Status).To(Equal(entities.StatusDenied))

				isFollowing, err := f.service.IsFollowing(ctx, sender, target)
				Expect(err).NotTo(HaveOccurred())
				Expect(isFollowing).To(BeFalse())

				Expect(f.notifier.Events()).To(Equal([]domain.FollowEvent{domain.EventFollowRequestDenied}))
			})
		})

		When("no request exists for the pair", func() {
			It("is a soft no-op without events", func() {
				// ACT
				denied, err := f.service.DenyRequest(ctx, target, sender)

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(denied).To(BeFalse())
				Expect(f.notifier.Events()).To(BeEmpty())
			})
		})
	})

	Context("when listing requests awaiting decision", func() {
		It("returns only pending rows addressed to the recipient", func() {
			// ARRANGE
			other := f.addUser("other-requester")

			_, err := f.service.Follow(ctx, sender, target)
			Expect(err).NotTo(HaveOccurred())
			_, err = f.service.Follow(ctx, other, target)
			Expect(err).NotTo(HaveOccurred())

			_, err = f.service.AcceptRequest(ctx, target, other)
			Expect(err).NotTo(HaveOccurred())

			// ACT
			requests, err := f.service.GetFollowerRequests(ctx, target)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(requests).To(HaveLen(1))
			Expect(requests[0].Sender()).To(Equal(sender))
			Expect(requests[0].Status).To(Equal(entities.StatusPending))
		})
	})
})
