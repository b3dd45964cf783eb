package followers_test

import (
	"context"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"followerspoc/src/domain"
	"followerspoc/src/domain/entities"
	"followerspoc/src/services/followers"
)

var _ = Describe("FollowLists", func() {
	var (
		f   *fixture
		ctx context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		f = newFixture(followers.Config{})
	})

	Context("when listing relationships by status", func() {
		var (
			viewer   entities.Ref
			accepted entities.Ref
			pending  entities.Ref
			denied   entities.Ref
		)

		BeforeEach(func() {
			viewer = f.addUser("viewer")
			accepted = f.addUser("accepted-target")
			pending = f.addUser("pending-target")
			denied = f.addUser("denied-target")

			_, err := f.service.Follow(ctx, viewer, accepted)
			Expect(err).NotTo(HaveOccurred())
			_, err = f.service.AcceptRequest(ctx, accepted, viewer)
			Expect(err).NotTo(HaveOccurred())

			_, err = f.service.Follow(ctx, viewer, pending)
			Expect(err).NotTo(HaveOccurred())

			_, err = f.service.Follow(ctx, viewer, denied)
			Expect(err).NotTo(HaveOccurred())
			_, err = f.service.DenyRequest(ctx, denied, viewer)
			Expect(err).NotTo(HaveOccurred())
		})

		It("splits outgoing rows per status", func() {
			acceptedRows, err := f.service.GetAcceptedRequestsToFollow(ctx, viewer)
			Expect(err).NotTo(HaveOccurred())
			Expect(acceptedRows).To(HaveLen(1))
			Expect(acceptedRows[0].Recipient()).To(Equal(accepted))

			pendingRows, err := f.service.GetPendingRequestsToFollow(ctx, viewer)
			Expect(err).NotTo(HaveOccurred())
			Expect(pendingRows).To(HaveLen(1))
			Expect(pendingRows[0].Recipient()).To(Equal(pending))

			deniedRows, err := f.service.GetDeniedRequestsToFollow(ctx, viewer)
			Expect(err).NotTo(HaveOccurred())
			Expect(deniedRows).To(HaveLen(1))
			Expect(deniedRows[0].Recipient()).To(Equal(denied))
		})

		It("returns all outgoing rows regardless of status", func() {
			rows, err := f.service.GetAllFollowing(ctx, viewer)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(3))
		})

		It("mirrors the incoming side for the targets", func() {
			incoming, err := f.service.GetAcceptedRequestsToBeFollowed(ctx, accepted)
			Expect(err).NotTo(HaveOccurred())
			Expect(incoming).To(HaveLen(1))
			Expect(incoming[0].Sender()).To(Equal(viewer))

			all, err := f.service.GetAllFollowedBy(ctx, accepted)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(1))
		})

		It("counts only accepted rows in the follow counters", func() {
			followingCount, err := f.service.GetFollowingCount(ctx, viewer)
			Expect(err).NotTo(HaveOccurred())
			Expect(followingCount).To(Equal(int64(1)))

			followedByCount, err := f.service.GetFollowedByCount(ctx, accepted)
			Expect(err).NotTo(HaveOccurred())
			Expect(followedByCount).To(Equal(int64(1)))
		})
	})

	Context("when resolving related entities", func() {
		var (
			viewer  entities.Ref
			targets []entities.Ref
		)

		BeforeEach(func() {
			viewer = f.addUser("list-viewer")
			targets = nil
			for i := 1; i <= 7; i++ {
				target := f.addUser(fmt.Sprintf("list-target-%d", i))
				targets = append(targets, target)

				_, err := f.service.Follow(ctx, viewer, target)
				Expect(err).NotTo(HaveOccurred())
				_, err = f.service.AcceptRequest(ctx, target, viewer)
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("returns everything in one page when unpaged", func() {
			// ACT
			page, err := f.service.GetFollowingList(ctx, viewer, domain.PageRequest{})

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Items).To(HaveLen(7))
			Expect(page.Total).To(Equal(int64(7)))
		})

		It("pages through the result set", func() {
			// ACT
			first, err := f.service.GetFollowingList(ctx, viewer, domain.PageRequest{Page: 1, PerPage: 3})
			Expect(err).NotTo(HaveOccurred())
			last, err := f.service.GetFollowingList(ctx, viewer, domain.PageRequest{Page: 3, PerPage: 3})
			Expect(err).NotTo(HaveOccurred())

			// ASSERT
			Expect(first.Items).To(HaveLen(3))
			Expect(first.Total).To(Equal(int64(7)))
			Expect(last.Items).To(HaveLen(1))
			Expect(last.Total).To(Equal(int64(7)))
		})

		It("caps a page larger than the set at the set size", func() {
			// ACT
			page, err := f.service.GetFollowingList(ctx, viewer, domain.PageRequest{Page: 1, PerPage: 50})

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Items).To(HaveLen(7))
			Expect(page.Total).To(Equal(int64(7)))
		})

		It("resolves the follower side as entities too", func() {
			// ARRANGE
			target := targets[0]

			// ACT
			page, err := f.service.GetFollowedByList(ctx, target, domain.PageRequest{})

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Items).To(HaveLen(1))
			Expect(page.Items[0].Ref()).To(Equal(viewer))
		})

		It("never includes the queried entity itself", func() {
			// ACT
			page, err := f.service.GetFollowingList(ctx, viewer, domain.PageRequest{})

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			for _, item := range page.Items {
				Expect(item.Ref()).NotTo(Equal(viewer))
			}
		})
	})

	Context("when a sender works through its following limit end to end", func() {
		It("hits the limit with mixed statuses and silently refuses the sixth follow", func() {
			// ARRANGE
			f = newFixture(followers.Config{MaxFollowing: 5})
			sender := f.addUser("prolific-sender")

			var targets []entities.Ref
			for i := 1; i <= 6; i++ {
				targets = append(targets, f.addUser(fmt.Sprintf("limit-target-%d", i)))
			}

			// ACT: cinco pedidos saem, quatro aceitos, o quinto fica PENDING
			for i := 0; i < 5; i++ {
				created, err := f.service.Follow(ctx, sender, targets[i])
				Expect(err).NotTo(HaveOccurred())
				Expect(created).NotTo(BeNil())

				if i < 4 {
					accepted, err := f.service.AcceptRequest(ctx, targets[i], sender)
					Expect(err).NotTo(HaveOccurred())
					Expect(accepted).To(BeTrue())
				}
			}

			sixth, err := f.service.Follow(ctx, sender, targets[5])

			// ASSERT: a linha PENDING também ocupa vaga do limite
			Expect(err).NotTo(HaveOccurred())
			Expect(sixth).To(BeNil())

			all, err := f.service.GetAllFollowing(ctx, sender)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(5))

			count, err := f.service.GetFollowingCount(ctx, sender)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(4)))

			page, err := f.service.GetFollowingList(ctx, sender, domain.PageRequest{})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Items).To(HaveLen(4))

			// cinco pedidos + quatro aceites notificados, nada para o sexto
			Expect(f.notifier.All()).To(HaveLen(9))
		})
	})
})
