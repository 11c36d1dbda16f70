//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/railbooking/railbooking/internal/domain"
	"github.com/railbooking/railbooking/internal/repository"
	"github.com/railbooking/railbooking/internal/service/booking"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run with: RAILBOOKING_TEST_DATABASE_URL=postgres://... go test -tags integration ./internal/repository/

func openPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("RAILBOOKING_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("RAILBOOKING_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, pool.Ping(ctx))
	require.NoError(t, repository.EnsureSchema(ctx, pool))
	return pool
}

// seedTrain creates a train and a user owned by this test and removes
// both, with any tickets and payments, when the test ends.
func seedTrain(t *testing.T, pool *pgxpool.Pool, capacity, available int) (trainNo, userID int64) {
	t.Helper()
	ctx := context.Background()
	trainNo = time.Now().UnixNano() % 1_000_000_000

	_, err := pool.Exec(ctx, `INSERT INTO train (train_no, train_name, source, destination, total_capacity, seat_available)
		VALUES ($1, 'Integration Express', 'BCT', 'NDLS', $2, $3)`, trainNo, capacity, available)
	require.NoError(t, err)

	user := &domain.User{Username: fmt.Sprintf("it-%d", trainNo), PasswordHash: "x"}
	require.NoError(t, repository.NewUserRepository(pool).Create(ctx, user))

	t.Cleanup(func() {
		ctx := context.Background()
		_, _ = pool.Exec(ctx, `DELETE FROM payment WHERE pnr_no IN (SELECT pnr_no FROM ticket WHERE train_no=$1)`, trainNo)
		_, _ = pool.Exec(ctx, `DELETE FROM ticket WHERE train_no=$1`, trainNo)
		_, _ = pool.Exec(ctx, `DELETE FROM train WHERE train_no=$1`, trainNo)
		_, _ = pool.Exec(ctx, `DELETE FROM users WHERE user_id=$1`, user.ID)
	})
	return trainNo, user.ID
}

func newBookingService(pool *pgxpool.Pool) *booking.BookingService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return booking.NewBookingService(repository.NewStore(pool), repository.NewTicketRepository(pool), logger)
}

func bookInput(trainNo, userID int64) booking.BookInput {
	return booking.BookInput{
		TrainNo:       trainNo,
		UserID:        userID,
		PassengerName: "Alice",
		ClassType:     "3A",
		Source:        "BCT",
		Destination:   "NDLS",
		DateTime:      time.Now().Add(48 * time.Hour),
		Amount:        decimal.RequireFromString("1450.50"),
		CardNo:        "4111111111111234",
	}
}

func seatAvailable(t *testing.T, pool *pgxpool.Pool, trainNo int64) int {
	t.Helper()
	snap, err := repository.NewTrainRepository(pool).GetCapacity(context.Background(), trainNo)
	require.NoError(t, err)
	return snap.SeatAvailable
}

func TestPGStore_ConcurrentLastSeat(t *testing.T) {
	pool := openPool(t)
	trainNo, userID := seedTrain(t, pool, 10, 1)
	service := newBookingService(pool)
	ctx := context.Background()

	const workers = 20
	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		successes   int
		unavailable int
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := service.Book(ctx, bookInput(trainNo, userID))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrSeatUnavailable):
				unavailable++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, unavailable)
	assert.Equal(t, 0, seatAvailable(t, pool, trainNo))

	var tickets int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM ticket WHERE train_no=$1`, trainNo).Scan(&tickets))
	assert.Equal(t, 1, tickets)
}

func TestPGStore_ConcurrentBookingsKeepCounterExact(t *testing.T) {
	pool := openPool(t)
	trainNo, userID := seedTrain(t, pool, 30, 30)
	service := newBookingService(pool)
	ctx := context.Background()

	const workers = 12
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.Book(ctx, bookInput(trainNo, userID))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 30-workers, seatAvailable(t, pool, trainNo))
}

func TestPGStore_CancelReturnsSeatAndClamps(t *testing.T) {
	pool := openPool(t)
	trainNo, userID := seedTrain(t, pool, 5, 5)
	service := newBookingService(pool)
	ctx := context.Background()

	booked, err := service.Book(ctx, bookInput(trainNo, userID))
	require.NoError(t, err)
	assert.Equal(t, 4, seatAvailable(t, pool, trainNo))

	require.NoError(t, service.Cancel(ctx, booked.PNR, userID))
	assert.Equal(t, 5, seatAvailable(t, pool, trainNo))

	// A drifted counter already at capacity stays there.
	booked, err = service.Book(ctx, bookInput(trainNo, userID))
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `UPDATE train SET seat_available = total_capacity WHERE train_no=$1`, trainNo)
	require.NoError(t, err)

	require.NoError(t, service.Cancel(ctx, booked.PNR, userID))
	assert.Equal(t, 5, seatAvailable(t, pool, trainNo))
}
