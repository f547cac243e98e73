package model

import "gorm.io/gorm"

// AutoMigrate runs GORM auto-migration for all models and creates custom indexes.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&User{},
		&Business{},
		&Contest{},
		&ContestField{},
		&Participant{},
		&ParticipantFieldValue{},
		&Payment{},
		&WaitlistEntry{},
	); err != nil {
		return err
	}

	// Case-insensitive unique email per contest, only for non-soft-deleted rows.
	if err := db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_participants_contest_email_lower " +
			"ON participants (contest_id, (lower(email))) WHERE deleted_at IS NULL",
	).Error; err != nil {
		return err
	}

	// Case-insensitive unique email for non-soft-deleted users.
	return db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_lower " +
			"ON users ((lower(email))) WHERE deleted_at IS NULL",
	).Error
}
