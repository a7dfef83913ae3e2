package postgres

import "github.com/jooksuklubid/runclubs/internal/domain/entity"

// Migrations is a list of all gorm migrations for the database.
var Migrations = []interface{}{
	&entity.User{},
	&entity.Club{},
	&entity.Event{},
}
