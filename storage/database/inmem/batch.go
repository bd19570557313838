package inmemdb

import (
	"sort"

	"github.com/FAHMIDA-78/copo/core/batch"
)

type batchRepository struct {
	db *batchTable
}

func NewBatchRepository(db *DB) batch.Repository {
	return &batchRepository{db: db.batch}
}

func (repo *batchRepository) SaveBatch(pb batch.ProcessedBatch) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.batches[pb.Batch.ID] = &pb
	return nil
}

func (repo *batchRepository) QueryAllBatches() ([]batch.Batch, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	batches := make([]batch.Batch, 0, len(repo.db.batches))
	for _, pb := range repo.db.batches {
		batches = append(batches, pb.Batch)
	}
	sort.Slice(batches, func(i, j int) bool { return batches[i].CreatedAt.After(batches[j].CreatedAt) })
	return batches, nil
}

func (repo *batchRepository) GetBatchByID(id string) (batch.ProcessedBatch, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if pb, ok := repo.db.batches[id]; ok {
		return *pb, nil
	}
	return batch.ProcessedBatch{}, batch.ErrNotFound
}

func (repo *batchRepository) GetStudentResult(batchID, studentID string) (batch.StudentResult, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	pb, ok := repo.db.batches[batchID]
	if !ok {
		return batch.StudentResult{}, batch.ErrNotFound
	}
	for _, sr := range pb.Results {
		if sr.Outcome.Record.StudentID == studentID {
			return sr, nil
		}
	}
	return batch.StudentResult{}, batch.ErrNotFound
}

func (repo *batchRepository) DeleteBatchesByID(ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	for _, id := range ids {
		delete(repo.db.batches, id)
	}
	return nil
}
