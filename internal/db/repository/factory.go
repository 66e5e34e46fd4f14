package repository

import "gorm.io/gorm"

// RepositoryFactory creates and manages all repositories
type RepositoryFactory struct {
	db           *gorm.DB
	userRepo     UserRepository
	patientRepo  PatientRepository
	readingRepo  ReadingRepository
	analysisRepo AnalysisRepository
}

// NewRepositoryFactory creates a new repository factory
func NewRepositoryFactory(db *gorm.DB) *RepositoryFactory {
	return &RepositoryFactory{
		db: db,
	}
}

// User returns the user repository
func (f *RepositoryFactory) User() UserRepository {
	if f.userRepo == nil {
		f.userRepo = NewUserRepository(f.db)
	}
	return f.userRepo
}

// Patient returns the patient repository
func (f *RepositoryFactory) Patient() PatientRepository {
	if f.patientRepo == nil {
		f.patientRepo = NewPatientRepository(f.db)
	}
	return f.patientRepo
}

// Reading returns the glucose reading repository
func (f *RepositoryFactory) Reading() ReadingRepository {
	if f.readingRepo == nil {
		f.readingRepo = NewReadingRepository(f.db)
	}
	return f.readingRepo
}

// Analysis returns the analysis repository
func (f *RepositoryFactory) Analysis() AnalysisRepository {
	if f.analysisRepo == nil {
		f.analysisRepo = NewAnalysisRepository(f.db)
	}
	return f.analysisRepo
}
