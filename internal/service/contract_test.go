package service_test

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"driverent-backend/internal/domain"
	"driverent-backend/internal/storage"
)

func TestRentalWorkflow_EndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	rq := f.pendingRequest(t, "2025-01-01", "2025-01-02")
	res, err := f.requests.ApproveRequest(ctx, owner, rq.ID, approvalTerms())
	require.NoError(t, err)

	c, err := f.contracts.GetContract(ctx, driver, res.ContractID)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Terms.Aluguel.Dias)
	assert.Equal(t, 150.0, c.Terms.Aluguel.ValorTotal)

	published, err := f.contracts.PublishContract(ctx, owner, res.ContractID, domain.PublishPatch{})
	require.NoError(t, err)
	assert.Equal(t, domain.ContractStatusReadyForSignature, published.Status)

	signed, err := f.contracts.SignContract(ctx, driver, res.ContractID, "203.0.113.7")
	require.NoError(t, err)
	assert.Equal(t, domain.ContractStatusSigned, signed.Status)
	require.NotNil(t, signed.SignedAt)
	require.NotNil(t, signed.SignatureIP)
	assert.Equal(t, "203.0.113.7", *signed.SignatureIP)

	rental, err := f.store.GetRental(ctx, res.RentalID)
	require.NoError(t, err)
	assert.Equal(t, domain.RentalStatusSigned, rental.Status)

	exists, size, err := f.docs.FileExists(ctx, storage.SignedContractKey(res.ContractID))
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, int64(len(signed.Document)), size)

	doc, err := f.contracts.GetDocument(ctx, owner, res.ContractID)
	require.NoError(t, err)
	assert.Equal(t, signed.Document, doc)

	f.email.AssertCalled(t, "SendContractPublishedNotification", mock.Anything, "ana@example.com", "Fiat Argo (XYZ9A87)", res.ContractID)
	f.email.AssertCalled(t, "SendContractSignedNotification", mock.Anything, "carla@example.com", "Ana Motorista", "Fiat Argo (XYZ9A87)", res.ContractID)
}

func TestEditContract(t *testing.T) {
	ctx := context.Background()

	t.Run("Recomputes total and records revision", func(t *testing.T) {
		f := newFixture(t)
		id := f.negotiatingContract(t)
		before, err := f.store.GetContract(ctx, id)
		require.NoError(t, err)

		edited, err := f.contracts.EditContract(ctx, owner, id, domain.EditPatch{
			Pagamento: &domain.PaymentPatch{ValorPorDia: rate(200)},
			Aluguel:   &domain.LocationPatch{LocalDevolucao: text("Aeroporto de Viracopos")},
		})
		require.NoError(t, err)
		assert.Equal(t, 200.0, edited.Terms.Pagamento.ValorPorDia)
		assert.Equal(t, 1, edited.Terms.Aluguel.Dias)
		assert.Equal(t, 200.0, edited.Terms.Aluguel.ValorTotal)
		assert.Equal(t, "Garagem Centro", edited.Terms.Aluguel.LocalRetirada)
		assert.Equal(t, "Aeroporto de Viracopos", edited.Terms.Aluguel.LocalDevolucao)
		assert.NotEqual(t, before.Document, edited.Document)
		assert.Contains(t, edited.Document, "Aeroporto de Viracopos")

		stored, err := f.store.GetContract(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, edited.Terms, stored.Terms)
		assert.Equal(t, domain.ContractStatusNegotiating, stored.Status)

		rental, err := f.store.GetRental(ctx, stored.RentalID)
		require.NoError(t, err)
		assert.Equal(t, 200.0, rental.DailyRate)
		assert.Equal(t, stored.Terms.Aluguel.ValorTotal, rental.TotalAmount)

		revisions, err := f.contracts.ListRevisions(ctx, driver, id)
		require.NoError(t, err)
		require.Len(t, revisions, 1)
		assert.Equal(t, domain.RevisionActionEdit, revisions[0].Action)
		assert.Equal(t, ownerID, revisions[0].AuthorID)
		assert.Equal(t, domain.RoleOwner, revisions[0].AuthorRole)
		assert.Equal(t, 150.0, revisions[0].Previous.Pagamento.ValorPorDia)
		assert.Equal(t, 200.0, revisions[0].Current.Pagamento.ValorPorDia)
	})

	t.Run("Invalid rate keeps stored terms", func(t *testing.T) {
		f := newFixture(t)
		id := f.negotiatingContract(t)

		for _, v := range []float64{0, -1, math.NaN(), math.Inf(-1)} {
			_, err := f.contracts.EditContract(ctx, owner, id, domain.EditPatch{Pagamento: &domain.PaymentPatch{ValorPorDia: rate(v)}})
			var unprocessable *domain.ErrUnprocessable
			assert.ErrorAs(t, err, &unprocessable)
		}

		stored, err := f.store.GetContract(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 150.0, stored.Terms.Pagamento.ValorPorDia)
		revisions, err := f.store.ListRevisions(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, revisions)
	})

	t.Run("Empty patch keeps terms", func(t *testing.T) {
		f := newFixture(t)
		id := f.negotiatingContract(t)
		before, err := f.store.GetContract(ctx, id)
		require.NoError(t, err)

		edited, err := f.contracts.EditContract(ctx, admin, id, domain.EditPatch{})
		require.NoError(t, err)
		assert.Equal(t, before.Terms, edited.Terms)
	})

	t.Run("After publish", func(t *testing.T) {
		f := newFixture(t)
		id := f.negotiatingContract(t)
		_, err := f.contracts.PublishContract(ctx, owner, id, domain.PublishPatch{})
		require.NoError(t, err)

		_, err = f.contracts.EditContract(ctx, owner, id, domain.EditPatch{Pagamento: &domain.PaymentPatch{ValorPorDia: rate(90)}})
		var conflict *domain.ErrConflict
		assert.ErrorAs(t, err, &conflict)
	})
}

func TestPublishContract(t *testing.T) {
	ctx := context.Background()

	t.Run("Flags and rental status", func(t *testing.T) {
		f := newFixture(t)
		id := f.negotiatingContract(t)

		published, err := f.contracts.PublishContract(ctx, owner, id, domain.PublishPatch{
			Aluguel: &domain.LocationPatch{LocalRetirada: text("Rodoviaria")},
		})
		require.NoError(t, err)
		assert.Equal(t, domain.ContractStatusReadyForSignature, published.Status)
		assert.Equal(t, "Rodoviaria", published.Terms.Aluguel.LocalRetirada)

		stored, err := f.store.GetContract(ctx, id)
		require.NoError(t, err)
		assert.False(t, stored.SeenByDriver)
		assert.True(t, stored.SeenByOwner)
		assert.Contains(t, stored.Document, "Rodoviaria")

		rental, err := f.store.GetRental(ctx, stored.RentalID)
		require.NoError(t, err)
		assert.Equal(t, domain.RentalStatusReadyForSignature, rental.Status)

		revisions, err := f.store.ListRevisions(ctx, id)
		require.NoError(t, err)
		require.Len(t, revisions, 1)
		assert.Equal(t, domain.RevisionActionPublish, revisions[0].Action)
	})

	t.Run("Publish with new rate recomputes", func(t *testing.T) {
		f := newFixture(t)
		id := f.negotiatingContract(t)

		published, err := f.contracts.PublishContract(ctx, owner, id, domain.PublishPatch{
			Pagamento: &domain.PaymentPatch{ValorPorDia: rate(180)},
		})
		require.NoError(t, err)
		assert.Equal(t, 180.0, published.Terms.Aluguel.ValorTotal)

		rental, err := f.store.GetRental(ctx, published.RentalID)
		require.NoError(t, err)
		assert.Equal(t, 180.0, rental.DailyRate)
		assert.Equal(t, published.Terms.Aluguel.ValorTotal, rental.TotalAmount)
		assert.Equal(t, domain.RentalStatusReadyForSignature, rental.Status)
	})

	t.Run("Twice", func(t *testing.T) {
		f := newFixture(t)
		id := f.negotiatingContract(t)
		_, err := f.contracts.PublishContract(ctx, owner, id, domain.PublishPatch{})
		require.NoError(t, err)

		_, err = f.contracts.PublishContract(ctx, owner, id, domain.PublishPatch{})
		var conflict *domain.ErrConflict
		assert.ErrorAs(t, err, &conflict)
	})
}

func TestSignContract_FromNegotiatingIsAccepted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.negotiatingContract(t)

	signed, err := f.contracts.SignContract(ctx, driver, id, "198.51.100.2")
	require.NoError(t, err)
	assert.Equal(t, domain.ContractStatusSigned, signed.Status)

	stored, err := f.store.GetContract(ctx, id)
	require.NoError(t, err)
	assert.True(t, stored.SeenByDriver)
	assert.False(t, stored.SeenByOwner)
}

func TestSignContract(t *testing.T) {
	ctx := context.Background()

	t.Run("Twice", func(t *testing.T) {
		f := newFixture(t)
		id := f.negotiatingContract(t)
		first, err := f.contracts.SignContract(ctx, driver, id, "198.51.100.2")
		require.NoError(t, err)

		_, err = f.contracts.SignContract(ctx, driver, id, "198.51.100.3")
		var conflict *domain.ErrConflict
		require.ErrorAs(t, err, &conflict)

		stored, err := f.store.GetContract(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "198.51.100.2", *stored.SignatureIP)
		assert.True(t, first.SignedAt.Equal(*stored.SignedAt))
	})

	t.Run("Only the contract driver", func(t *testing.T) {
		f := newFixture(t)
		id := f.negotiatingContract(t)

		var forbidden *domain.ErrForbidden
		for _, p := range []domain.Principal{otherDriver, owner, admin} {
			_, err := f.contracts.SignContract(ctx, p, id, "198.51.100.2")
			assert.ErrorAs(t, err, &forbidden)
		}
	})

	t.Run("Archive falls back to stored copy", func(t *testing.T) {
		f := newFixture(t)
		id := f.negotiatingContract(t)
		signed, err := f.contracts.SignContract(ctx, driver, id, "198.51.100.2")
		require.NoError(t, err)
		require.NoError(t, f.docs.DeleteFile(ctx, storage.SignedContractKey(id)))

		doc, err := f.contracts.GetDocument(ctx, driver, id)
		require.NoError(t, err)
		assert.Equal(t, signed.Document, doc)
	})
}

func TestContract_UnrelatedCallers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.negotiatingContract(t)

	var forbidden *domain.ErrForbidden
	for _, p := range []domain.Principal{otherDriver, otherOwner} {
		_, err := f.contracts.GetContract(ctx, p, id)
		assert.ErrorAs(t, err, &forbidden)
		_, err = f.contracts.GetDocument(ctx, p, id)
		assert.ErrorAs(t, err, &forbidden)
		_, err = f.contracts.ListRevisions(ctx, p, id)
		assert.ErrorAs(t, err, &forbidden)
	}
	for _, p := range []domain.Principal{driver, otherOwner} {
		_, err := f.contracts.EditContract(ctx, p, id, domain.EditPatch{})
		assert.ErrorAs(t, err, &forbidden)
		_, err = f.contracts.PublishContract(ctx, p, id, domain.PublishPatch{})
		assert.ErrorAs(t, err, &forbidden)
	}

	_, err := f.contracts.GetContract(ctx, admin, id)
	assert.NoError(t, err)

	var notFound *domain.ErrNotFound
	_, err = f.contracts.GetContract(ctx, driver, 999)
	assert.ErrorAs(t, err, &notFound)
}

func TestListContracts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.negotiatingContract(t)
	_, err := f.contracts.PublishContract(ctx, owner, id, domain.PublishPatch{})
	require.NoError(t, err)

	mine, err := f.contracts.ListMyContracts(ctx, driver, true)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Empty(t, mine[0].Document)
	require.NotNil(t, mine[0].Vehicle)
	assert.Equal(t, "Argo", mine[0].Vehicle.Modelo)

	received, err := f.contracts.ListReceivedContracts(ctx, owner, false)
	require.NoError(t, err)
	assert.Len(t, received, 1)

	unseen, err := f.contracts.ListReceivedContracts(ctx, admin, true)
	require.NoError(t, err)
	assert.Empty(t, unseen)

	stored, err := f.store.GetContract(ctx, id)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.Document)

	var forbidden *domain.ErrForbidden
	_, err = f.contracts.ListMyContracts(ctx, owner, false)
	assert.ErrorAs(t, err, &forbidden)
	_, err = f.contracts.ListReceivedContracts(ctx, driver, false)
	assert.ErrorAs(t, err, &forbidden)
}

func TestMarkContractRead(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.negotiatingContract(t)
	_, err := f.contracts.PublishContract(ctx, owner, id, domain.PublishPatch{})
	require.NoError(t, err)

	require.NoError(t, f.contracts.MarkContractRead(ctx, driver, id, domain.PartyDriver))
	require.NoError(t, f.contracts.MarkContractRead(ctx, driver, id, domain.PartyDriver))

	stored, err := f.store.GetContract(ctx, id)
	require.NoError(t, err)
	assert.True(t, stored.SeenByDriver)

	var forbidden *domain.ErrForbidden
	assert.ErrorAs(t, f.contracts.MarkContractRead(ctx, owner, id, domain.PartyDriver), &forbidden)
	assert.ErrorAs(t, f.contracts.MarkContractRead(ctx, admin, id, domain.PartyOwner), &forbidden)
}

func TestGetDocument_ArchiveIsServed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.negotiatingContract(t)
	_, err := f.contracts.SignContract(ctx, driver, id, "198.51.100.2")
	require.NoError(t, err)

	archived := filepath.Join(f.docsDir, filepath.FromSlash(storage.SignedContractKey(id)))
	require.NoError(t, os.WriteFile(archived, []byte("<html>arquivado</html>"), 0o644))

	doc, err := f.contracts.GetDocument(ctx, driver, id)
	require.NoError(t, err)
	assert.Equal(t, "<html>arquivado</html>", doc)
}
