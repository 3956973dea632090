package models

// AllModels lists every table the service migrates.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Tag{},
		&Question{},
		&InterviewTemplate{},
		&Interview{},
		&Answer{},
		&KeystrokeRecord{},
	}
}
