package domain

// Practice a dental clinic location (practices table)
type Practice struct {
	ID   int64  `db:"id"`
	Name string `db:"name"` // NOT NULL, unique
}

// Doctor a practitioner affiliated with exactly one practice (doctors table)
type Doctor struct {
	ID         int64  `db:"id"`
	Name       string `db:"name"` // NOT NULL, unique
	PracticeID int64  `db:"practice_id"`
}
