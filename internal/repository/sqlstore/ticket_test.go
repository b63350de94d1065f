package sqlstore

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accidentapi/internal/model"
	"accidentapi/internal/repository"
)

var ticketCols = []string{"id", "transcript", "extracted_data", "status", "phase", "created_at", "updated_at"}

var attachmentCols = []string{"id", "ticket_id", "filename", "url", "type", "size", "storage_key", "created_at"}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestTicketSQL_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTicketSQL(db, SQLite)

	now := time.Now().UTC()
	tk := &model.Ticket{
		ID:        "t1",
		Status:    model.StatusOpen,
		Phase:     "greeting",
		CreatedAt: now,
		UpdatedAt: now,
	}

	mock.ExpectExec("INSERT INTO tickets").
		WithArgs("t1", "[]", "{}", "open", "greeting", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	out, err := repo.Create(context.Background(), tk)

	require.NoError(t, err)
	assert.Equal(t, "t1", out.ID)
	assert.NotNil(t, out.Attachments)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketSQL_FindByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTicketSQL(db, SQLite)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM tickets WHERE id = ?").
			WithArgs("t1").
			WillReturnRows(sqlmock.NewRows(ticketCols).
				AddRow("t1", `[{"role":"user","content":"hi","timestamp":"2024-01-01T00:00:00Z"}]`, `{"location":"A1"}`, "open", "collecting", now, now))
		mock.ExpectQuery("SELECT (.+) FROM attachments").
			WithArgs("t1").
			WillReturnRows(sqlmock.NewRows(attachmentCols).
				AddRow("a1", "t1", "car.jpg", "/uploads/x.jpg", "image/jpeg", 42, "tickets/t1/x.jpg", now))

		tk, err := repo.FindByID(ctx, "t1")

		require.NoError(t, err)
		assert.Equal(t, model.StatusOpen, tk.Status)
		assert.Equal(t, "collecting", tk.Phase)
		require.Len(t, tk.Transcript, 1)
		assert.Equal(t, "hi", tk.Transcript[0].Content)
		assert.Equal(t, "A1", tk.ExtractedData["location"])
		require.Len(t, tk.Attachments, 1)
		assert.Equal(t, int64(42), tk.Attachments[0].Size)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM tickets WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		tk, err := repo.FindByID(ctx, "missing")

		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Nil(t, tk)
	})

	t.Run("corrupt transcript", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM tickets WHERE id = ?").
			WithArgs("bad").
			WillReturnRows(sqlmock.NewRows(ticketCols).
				AddRow("bad", `not json`, `{}`, "open", "greeting", now, now))

		_, err := repo.FindByID(ctx, "bad")

		assert.ErrorContains(t, err, "decode transcript")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketSQL_List(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTicketSQL(db, SQLite)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tickets WHERE status = \?`).
		WithArgs("open").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("SELECT (.+) FROM tickets WHERE status = (.+) ORDER BY").
		WithArgs("open", 10, 0).
		WillReturnRows(sqlmock.NewRows(ticketCols).
			AddRow("t2", `[]`, `{}`, "open", "greeting", now, now).
			AddRow("t1", `[]`, `{}`, "open", "evidence", now, now))
	mock.ExpectQuery("SELECT (.+) FROM attachments").
		WithArgs("t2", "t1").
		WillReturnRows(sqlmock.NewRows(attachmentCols).
			AddRow("a1", "t1", "car.jpg", "/uploads/x.jpg", "image/jpeg", 42, "k", now))

	res, err := repo.List(context.Background(), repository.TicketFilter{Status: model.StatusOpen, Limit: 10})

	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	require.Len(t, res.Items, 2)
	assert.Empty(t, res.Items[0].Attachments)
	assert.Len(t, res.Items[1].Attachments, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketSQL_Update(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTicketSQL(db, SQLite)
	now := time.Now().UTC()
	tk := &model.Ticket{ID: "t1", Status: model.StatusClosed, Phase: "complete", UpdatedAt: now}

	t.Run("updated", func(t *testing.T) {
		mock.ExpectExec("UPDATE tickets").
			WithArgs("[]", "{}", "closed", "complete", now, "t1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Update(context.Background(), tk))
	})

	t.Run("missing", func(t *testing.T) {
		mock.ExpectExec("UPDATE tickets").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Update(context.Background(), tk), repository.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketSQL_Delete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTicketSQL(db, SQLite)

	t.Run("deleted", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM attachments WHERE ticket_id = ?").
			WithArgs("t1").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec("DELETE FROM tickets WHERE id = ?").
			WithArgs("t1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.Delete(context.Background(), "t1"))
	})

	t.Run("missing rolls back", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM attachments WHERE ticket_id = ?").
			WithArgs("nope").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("DELETE FROM tickets WHERE id = ?").
			WithArgs("nope").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		assert.ErrorIs(t, repo.Delete(context.Background(), "nope"), repository.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketSQL_Attachments(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTicketSQL(db, Postgres)
	now := time.Now().UTC()

	a := &model.Attachment{
		ID: "a1", TicketID: "t1", Filename: "car.jpg", URL: "u", Type: "image/jpeg",
		Size: 10, StorageKey: "k", CreatedAt: now,
	}
	mock.ExpectExec(`INSERT INTO attachments \(.+\) VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8\)`).
		WithArgs("a1", "t1", "car.jpg", "u", "image/jpeg", int64(10), "k", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.AddAttachment(context.Background(), a))

	mock.ExpectExec(`INSERT INTO attachments`).
		WillReturnError(&pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"})
	assert.ErrorIs(t, repo.AddAttachment(context.Background(), a), repository.ErrNotFound)

	mock.ExpectExec(`DELETE FROM attachments WHERE id = \$1 AND ticket_id = \$2`).
		WithArgs("a1", "t1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.DeleteAttachment(context.Background(), "t1", "a1"), repository.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketSQL_CountByStatus(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTicketSQL(db, SQLite)

	mock.ExpectQuery("SELECT status, COUNT(.+) FROM tickets GROUP BY status").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("open", 3).
			AddRow("closed", 1))

	counts, err := repo.CountByStatus(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, counts[model.StatusOpen])
	assert.Equal(t, 1, counts[model.StatusClosed])
	assert.Equal(t, 0, counts[model.StatusInReview])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDialect_Rebind(t *testing.T) {
	q := `SELECT a FROM t WHERE x = ? AND y IN (?, ?)`
	assert.Equal(t, q, SQLite.Rebind(q))
	assert.Equal(t, `SELECT a FROM t WHERE x = $1 AND y IN ($2, $3)`, Postgres.Rebind(q))
}

func TestParseDialect(t *testing.T) {
	d, err := ParseDialect("SQLite")
	require.NoError(t, err)
	assert.Equal(t, SQLite, d)

	d, err = ParseDialect("pgx")
	require.NoError(t, err)
	assert.Equal(t, Postgres, d)

	_, err = ParseDialect("mysql")
	assert.Error(t, err)
}
