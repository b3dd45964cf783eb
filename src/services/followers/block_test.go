package followers_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"followerspoc/src/domain"
	"followerspoc/src/domain/entities"
	"followerspoc/src/services/followers"
)

var _ = Describe("Block", func() {
	var (
		f     *fixture
		ctx   context.Context
		alice entities.Ref
		bob   entities.Ref
	)

	BeforeEach(func() {
		ctx = context.Background()
		f = newFixture(followers.Config{})
		alice = f.addUser("alice")
		bob = f.addUser("bob")
	})

	Context("when blocking an entity", func() {
		It("stores the blocker on the recipient side of the row", func() {
			// ACT
			created, err := f.service.Block(ctx, alice, bob)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(created).NotTo(BeNil())
			Expect(created.Status).To(Equal(entities.StatusBlocked))
			Expect(created.Sender()).To(Equal(bob))
			Expect(created.Recipient()).To(Equal(alice))

			Expect(f.notifier.Events()).To(Equal([]domain.FollowEvent{domain.EventFollowingBlocked}))
		})

		It("prevents the blocked entity from sending follow requests", func() {
			// ARRANGE
			_, err := f.service.Block(ctx, alice, bob)
			Expect(err).NotTo(HaveOccurred())
			f.notifier.Reset()

			// ACT
			created, err := f.service.Follow(ctx, bob, alice)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeNil())
			Expect(f.notifier.Events()).To(BeEmpty())

			blocked, err := f.service.IsBlockedFromFollowing(ctx, bob, alice)
			Expect(err).NotTo(HaveOccurred())
			Expect(blocked).To(BeTrue())
		})

		It("is asymmetric: the blocker can still follow the blocked entity", func() {
			// ARRANGE
			_, err := f.service.Block(ctx, alice, bob)
			Expect(err).NotTo(HaveOccurred())
			f.notifier.Reset()

			// ACT: seguir quem se bloqueou desfaz o próprio bloqueio
			created, err := f.service.Follow(ctx, alice, bob)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(created).NotTo(BeNil())
			Expect(created.Status).To(Equal(entities.StatusPending))

			stillBlocked, err := f.service.HasBlocked(ctx, alice, bob)
			Expect(err).NotTo(HaveOccurred())
			Expect(stillBlocked).To(BeFalse())

			Expect(f.notifier.Events()).To(Equal([]domain.FollowEvent{
				domain.EventFollowingUnblocked,
				domain.EventFollowRequest,
			}))
		})

		It("tears down an existing relationship from the blocked entity", func() {
			// ARRANGE
			_, err := f.service.Follow(ctx, bob, alice)
			Expect(err).NotTo(HaveOccurred())
			_, err = f.service.AcceptRequest(ctx, alice, bob)
			Expect(err).NotTo(HaveOccurred())

			// ACT
			_, err = f.service.Block(ctx, alice, bob)
			Expect(err).NotTo(HaveOccurred())

			// ASSERT
			isFollowing, err := f.service.IsFollowing(ctx, bob, alice)
			Expect(err).NotTo(HaveOccurred())
			Expect(isFollowing).To(BeFalse())

			rows, err := f.store.Find(ctx, domain.FollowerFilter{Sender: &bob, Recipient: &alice})
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].Status).To(Equal(entities.StatusBlocked))
		})

		It("is a soft no-op when the entity is already blocked", func() {
			// ARRANGE
			_, err := f.service.Block(ctx, alice, bob)
			Expect(err).NotTo(HaveOccurred())
			f.notifier.Reset()

			// ACT
			created, err := f.service.Block(ctx, alice, bob)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeNil())
			Expect(f.notifier.Events()).To(BeEmpty())
		})

		It("fails soft on self-block and zero refs", func() {
			// ACT & ASSERT
			created, err := f.service.Block(ctx, alice, alice)
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeNil())

			created, err = f.service.Block(ctx, alice, entities.Ref{})
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeNil())
		})
	})

	Context("when both entities block each other", func() {
		BeforeEach(func() {
			_, err := f.service.Block(ctx, alice, bob)
			Expect(err).NotTo(HaveOccurred())
			_, err = f.service.Block(ctx, bob, alice)
			Expect(err).NotTo(HaveOccurred())
			f.notifier.Reset()
		})

		It("keeps two independent block rows", func() {
			aliceBlocks, err := f.service.HasBlocked(ctx, alice, bob)
			Expect(err).NotTo(HaveOccurred())
			Expect(aliceBlocks).To(BeTrue())

			bobBlocks, err := f.service.HasBlocked(ctx, bob, alice)
			Expect(err).NotTo(HaveOccurred())
			Expect(bobBlocks).To(BeTrue())
		})

		It("unblocking one direction leaves the other intact", func() {
			// ACT
			removed, err := f.service.Unblock(ctx, alice, bob)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(removed).To(BeTrue())

			aliceBlocks, err := f.service.HasBlocked(ctx, alice, bob)
			Expect(err).NotTo(HaveOccurred())
			Expect(aliceBlocks).To(BeFalse())

			bobBlocks, err := f.service.HasBlocked(ctx, bob, alice)
			Expect(err).NotTo(HaveOccurred())
			Expect(bobBlocks).To(BeTrue())

			Expect(f.notifier.Events()).To(Equal([]domain.FollowEvent{domain.EventFollowingUnblocked}))
		})
	})

	Context("when unblocking", func() {
		When("no block exists", func() {
			It("is a soft no-op", func() {
				// ACT
				removed, err := f.service.Unblock(ctx, alice, bob)

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(removed).To(BeFalse())
				Expect(f.notifier.Events()).To(BeEmpty())
			})
		})

		When("the pair row is a normal relationship, not a block", func() {
			It("leaves the relationship untouched", func() {
				// ARRANGE: linha (bob -> alice) PENDING, mesma polaridade
				// que um bloqueio de alice teria
				_, err := f.service.Follow(ctx, bob, alice)
				Expect(err).NotTo(HaveOccurred())
				f.notifier.Reset()

				// ACT
				removed, err := f.service.Unblock(ctx, alice, bob)

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(removed).To(BeFalse())

				hasRequest, err := f.service.HasFollowRequestFrom(ctx, alice, bob)
				Expect(err).NotTo(HaveOccurred())
				Expect(hasRequest).To(BeTrue())
				Expect(f.notifier.Events()).To(BeEmpty())
			})
		})
	})
})
