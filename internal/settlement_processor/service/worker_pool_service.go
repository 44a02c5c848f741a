package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/transactionprocessing/transaction-processor/internal/domain/shared"
)

// WorkerPoolSettlementService implements the SettlementDomainService interface
// on top of a bounded worker pool. Commands for different merchants run
// concurrently; each individual command still runs start to finish on one
// worker.
type WorkerPoolSettlementService struct {
	baseService SettlementDomainService
	pool        *ants.Pool
	logger      *slog.Logger
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolSettlementService(
	baseService SettlementDomainService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolSettlementService, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolSettlementService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
	}, nil
}

// submit runs the task on the pool and waits for its result. A pool that
// cannot accept the task fails the command rather than blocking the consumer.
func (s *WorkerPoolSettlementService) submit(task func() shared.Result) shared.Result {
	resultChan := make(chan shared.Result, 1)

	if err := s.pool.Submit(func() {
		resultChan <- task()
		close(resultChan)
	}); err != nil {
		s.logger.Error("Failed to submit settlement command to worker pool", "error", err)
		return shared.Failed("submitting to worker pool: %v", err)
	}

	return <-resultChan
}

// ProcessSettlement runs the settlement batch on a pool worker
func (s *WorkerPoolSettlementService) ProcessSettlement(ctx context.Context, command shared.ProcessSettlementCommand) shared.ResultValue[uuid.UUID] {
	resultChan := make(chan shared.ResultValue[uuid.UUID], 1)

	if err := s.pool.Submit(func() {
		resultChan <- s.baseService.ProcessSettlement(ctx, command)
		close(resultChan)
	}); err != nil {
		s.logger.Error("Failed to submit settlement command to worker pool", "error", err)
		return shared.FailedValue[uuid.UUID]("submitting to worker pool: %v", err)
	}

	return <-resultChan
}

// AddMerchantFeePendingSettlement records a pending fee on a pool worker
func (s *WorkerPoolSettlementService) AddMerchantFeePendingSettlement(ctx context.Context, command shared.AddMerchantFeePendingSettlementCommand) shared.Result {
	return s.submit(func() shared.Result {
		return s.baseService.AddMerchantFeePendingSettlement(ctx, command)
	})
}

// AddSettledFeeToSettlement settles a fee immediately on a pool worker
func (s *WorkerPoolSettlementService) AddSettledFeeToSettlement(ctx context.Context, command shared.AddSettledFeeToSettlementCommand) shared.Result {
	return s.submit(func() shared.Result {
		return s.baseService.AddSettledFeeToSettlement(ctx, command)
	})
}

// Shutdown gracefully shuts down the worker pool
func (s *WorkerPoolSettlementService) Shutdown() {
	s.logger.Info("Shutting down settlement worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool
func (s *WorkerPoolSettlementService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool
func (s *WorkerPoolSettlementService) Capacity() int {
	return s.pool.Cap()
}
