package repositories_test

import (
	"context"
	"fmt"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"followerspoc/src/domain"
	"followerspoc/src/domain/entities"
	"followerspoc/src/helper/env"
	"followerspoc/src/infra/postgres"
	"followerspoc/src/repositories"
	"followerspoc/src/test_artefacts/comparer"
	"followerspoc/src/test_artefacts/stubs"
	"followerspoc/src/test_artefacts/test_seeder"
)

var _ = Describe("FollowerRepository", func() {
	var (
		readWriteClient    *postgres.ReadWriteClient
		testSeeder         test_seeder.TestSeeder
		followerRepository *repositories.FollowerRepository
		ctx                context.Context
		err                error
	)

	BeforeEach(func() {
		if os.Getenv("TEST_DB_WRITE_HOST") == "" {
			Skip("TEST_DB_WRITE_HOST not set, skipping database integration specs")
		}

		ctx = context.Background()

		dbReadHost := env.GetString("TEST_DB_READ_HOST", env.MustGetString("TEST_DB_WRITE_HOST"))
		dbWriteHost := env.MustGetString("TEST_DB_WRITE_HOST")
		dbReadPort := env.GetString("TEST_DB_READ_PORT", "5432")
		dbWritePort := env.GetString("TEST_DB_WRITE_PORT", "5432")
		dbname := env.MustGetString("TEST_DB_NAME")
		dbUser := env.MustGetString("TEST_DB_USER")
		dbPassword := env.MustGetString("TEST_DB_PASSWORD")
		maxConnections := env.GetInt("TEST_DB_MAX_POOL_CONNECTIONS", 25)

		readWriteClient, err = postgres.NewReadWriteClient(dbReadHost, dbWriteHost, dbReadPort, dbWritePort, dbname, dbUser, dbPassword, maxConnections)
		if err != nil {
			panic(err)
		}

		followerRepository = repositories.NewFollowerRepository(readWriteClient)
		testSeeder = test_seeder.New(readWriteClient.GetWritePool())

		testSeeder.EnsureSchema(ctx)
		testSeeder.TruncateTables(ctx)
	})

	AfterEach(func() {
		if readWriteClient != nil {
			readWriteClient.Close()
		}
	})

	Context("when creating a relationship", func() {
		When("the pair has no row yet", func() {
			It("persists the row and returns it fully populated", func() {
				// ARRANGE
				stub := stubs.NewFollowerStub().Get()

				// ACT
				created, err := followerRepository.Create(ctx, stub.Sender(), stub.Recipient(), entities.StatusPending)

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(created.ID).To(BeNumerically(">", 0))
				Expect(created.Sender()).To(Equal(stub.Sender()))
				Expect(created.Recipient()).To(Equal(stub.Recipient()))
				Expect(created.Status).To(Equal(entities.StatusPending))
				Expect(created.CreatedAt).NotTo(BeZero())

				rows, err := testSeeder.SelectFollowersBySender(ctx, stub.Sender())
				Expect(err).NotTo(HaveOccurred())
				Expect(rows).To(HaveLen(1))
				Expect(rows[0]).To(BeComparableTo(*created, comparer.TimeWithinTolerance(200)))
			})
		})

		When("a row for the pair already exists", func() {
			It("surfaces the unique violation as a known error", func() {
				// ARRANGE
				stub := stubs.NewFollowerStub().Get()
				_, err := followerRepository.Create(ctx, stub.Sender(), stub.Recipient(), entities.StatusPending)
				Expect(err).NotTo(HaveOccurred())

				// ACT
				_, err = followerRepository.Create(ctx, stub.Sender(), stub.Recipient(), entities.StatusAccepted)

				// ASSERT
				Expect(err).To(MatchError(domain.ErrRelationshipExists))
			})

			It("still allows the reverse direction of the pair", func() {
				// ARRANGE
				stub := stubs.NewFollowerStub().Get()
				_, err := followerRepository.Create(ctx, stub.Sender(), stub.Recipient(), entities.StatusPending)
				Expect(err).NotTo(HaveOccurred())

				// ACT
				reverse, err := followerRepository.Create(ctx, stub.Recipient(), stub.Sender(), entities.StatusPending)

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(reverse).NotTo(BeNil())
			})
		})
	})

	Context("when looking up a pair", func() {
		It("returns nil without error when the pair has no row", func() {
			// ACT
			found, err := followerRepository.FindByPair(ctx,
				entities.Ref{Type: "user", ID: "nobody"},
				entities.Ref{Type: "user", ID: "nobody-else"})

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeNil())
		})

		It("returns the exact directional row", func() {
			// ARRANGE
			stub := stubs.NewFollowerStub().WithStatus(entities.StatusAccepted).Get()
			created, err := followerRepository.Create(ctx, stub.Sender(), stub.Recipient(), stub.Status)
			Expect(err).NotTo(HaveOccurred())

			// ACT
			found, err := followerRepository.FindByPair(ctx, stub.Sender(), stub.Recipient())

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(found).NotTo(BeNil())
			Expect(*found).To(BeComparableTo(*created, comparer.TimeWithinTolerance(200)))
		})
	})

	Context("when filtering relationships", func() {
		var sender entities.Ref

		BeforeEach(func() {
			sender = stubs.NewFollowerStub().Get().Sender()

			for i, status := range []entities.FollowStatus{
				entities.StatusPending,
				entities.StatusAccepted,
				entities.StatusAccepted,
			} {
				recipient := entities.Ref{Type: "user", ID: fmt.Sprintf("filter-recipient-%d", i)}
				_, err := followerRepository.Create(ctx, sender, recipient, status)
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("lists rows matching sender and status in insertion order", func() {
			// ACT
			accepted := entities.StatusAccepted
			rows, err := followerRepository.Find(ctx, domain.FollowerFilter{Sender: &sender, Status: &accepted})

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(2))
			Expect(rows[0].ID).To(BeNumerically("<", rows[1].ID))
		})

		It("counts and checks existence with the same filter semantics", func() {
			// ACT
			pending := entities.StatusPending
			count, err := followerRepository.Count(ctx, domain.FollowerFilter{Sender: &sender})
			Expect(err).NotTo(HaveOccurred())

			exists, err := followerRepository.Exists(ctx, domain.FollowerFilter{Sender: &sender, Status: &pending})
			Expect(err).NotTo(HaveOccurred())

			blocked := entities.StatusBlocked
			missing, err := followerRepository.Exists(ctx, domain.FollowerFilter{Sender: &sender, Status: &blocked})
			Expect(err).NotTo(HaveOccurred())

			// ASSERT
			Expect(count).To(Equal(int64(3)))
			Expect(exists).To(BeTrue())
			Expect(missing).To(BeFalse())
		})
	})

	Context("when updating the status of a pair", func() {
		It("changes the row in place and reports one affected row", func() {
			// ARRANGE
			stub := stubs.NewFollowerStub().Get()
			created, err := followerRepository.Create(ctx, stub.Sender(), stub.Recipient(), entities.StatusPending)
			Expect(err).NotTo(HaveOccurred())

			// ACT
			affected, err := followerRepository.UpdateStatusByPair(ctx, stub.Sender(), stub.Recipient(), entities.StatusAccepted)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(affected).To(Equal(int64(1)))

			found, err := followerRepository.FindByPair(ctx, stub.Sender(), stub.Recipient())
			Expect(err).NotTo(HaveOccurred())
			Expect(found.ID).To(Equal(created.ID))
			Expect(found.Status).To(Equal(entities.StatusAccepted))
		})

		It("reports zero affected rows for an unknown pair", func() {
			// ACT
			affected, err := followerRepository.UpdateStatusByPair(ctx,
				entities.Ref{Type: "user", ID: "ghost-sender"},
				entities.Ref{Type: "user", ID: "ghost-recipient"},
				entities.StatusAccepted)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(affected).To(Equal(int64(0)))
		})
	})

	Context("when deleting a pair", func() {
		It("is idempotent", func() {
			// ARRANGE
			stub := stubs.NewFollowerStub().Get()
			_, err := followerRepository.Create(ctx, stub.Sender(), stub.Recipient(), entities.StatusPending)
			Expect(err).NotTo(HaveOccurred())

			// ACT
			first, err := followerRepository.DeleteByPair(ctx, stub.Sender(), stub.Recipient())
			Expect(err).NotTo(HaveOccurred())
			second, err := followerRepository.DeleteByPair(ctx, stub.Sender(), stub.Recipient())
			Expect(err).NotTo(HaveOccurred())

			// ASSERT
			Expect(first).To(Equal(int64(1)))
			Expect(second).To(Equal(int64(0)))
		})
	})

	Context("when resolving related entities", func() {
		var (
			viewer          entities.Entity
			relatedEntities []entities.Entity
		)

		BeforeEach(func() {
			viewer = stubs.NewEntityStub().WithType("user").Get()
			testSeeder.InsertEntity(ctx, &viewer)

			relatedEntities = nil
			for i := 1; i <= 5; i++ {
				related := stubs.NewEntityStub().WithType("user").Get()
				testSeeder.InsertEntity(ctx, &related)
				relatedEntities = append(relatedEntities, related)

				_, err := followerRepository.Create(ctx, viewer.Ref(), related.Ref(), entities.StatusAccepted)
				Expect(err).NotTo(HaveOccurred())
			}

			// linha PENDING não deve aparecer nas listas ACCEPTED
			pendingTarget := stubs.NewEntityStub().WithType("user").Get()
			testSeeder.InsertEntity(ctx, &pendingTarget)
			_, err := followerRepository.Create(ctx, viewer.Ref(), pendingTarget.Ref(), entities.StatusPending)
			Expect(err).NotTo(HaveOccurred())
		})

		It("returns the opposite-side entities with the full set total", func() {
			// ACT
			page, err := followerRepository.ListRelatedEntities(ctx, viewer.Ref(), domain.SideSender, entities.StatusAccepted, domain.PageRequest{})

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Items).To(HaveLen(5))
			Expect(page.Total).To(Equal(int64(5)))

			Expect(page.Items[0]).To(BeComparableTo(relatedEntities[0],
				comparer.TimeWithinTolerance(200), comparer.JSONRawMessage(), comparer.IgnoreFieldsFor[entities.Entity]("ID")))
		})

		It("pages the related set keeping the total stable", func() {
			// ACT
			first, err := followerRepository.ListRelatedEntities(ctx, viewer.Ref(), domain.SideSender, entities.StatusAccepted, domain.PageRequest{Page: 1, PerPage: 2})
			Expect(err).NotTo(HaveOccurred())
			last, err := followerRepository.ListRelatedEntities(ctx, viewer.Ref(), domain.SideSender, entities.StatusAccepted, domain.PageRequest{Page: 3, PerPage: 2})
			Expect(err).NotTo(HaveOccurred())

			// ASSERT
			Expect(first.Items).To(HaveLen(2))
			Expect(first.Total).To(Equal(int64(5)))
			Expect(last.Items).To(HaveLen(1))
			Expect(last.Total).To(Equal(int64(5)))
		})

		It("resolves the recipient side as the followers of the target", func() {
			// ARRANGE
			target := relatedEntities[0]

			// ACT
			page, err := followerRepository.ListRelatedEntities(ctx, target.Ref(), domain.SideRecipient, entities.StatusAccepted, domain.PageRequest{})

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Items).To(HaveLen(1))
			Expect(page.Items[0].Reference).To(Equal(viewer.Reference))
		})

		It("excludes the queried entity from its own list", func() {
			// ARRANGE: auto-relação direto no storage, sem engine na frente
			selfRow := stubs.NewFollowerStub().
				WithSender(viewer.Ref()).
				WithRecipient(viewer.Ref()).
				WithStatus(entities.StatusAccepted).
				Get()
			testSeeder.InsertFollower(ctx, &selfRow)

			// ACT
			page, err := followerRepository.ListRelatedEntities(ctx, viewer.Ref(), domain.SideSender, entities.StatusAccepted, domain.PageRequest{})

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Items).To(HaveLen(5))
			for _, item := range page.Items {
				Expect(item.Reference).NotTo(Equal(viewer.Reference))
			}
		})
	})
})
