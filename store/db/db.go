// Package db selects a concrete store driver from the profile.
package db

import (
	"github.com/pkg/errors"

	"github.com/stridelabs/coachcore/internal/profile"
	"github.com/stridelabs/coachcore/store"
	"github.com/stridelabs/coachcore/store/db/postgres"
	"github.com/stridelabs/coachcore/store/db/sqlite"
)

// NewDBDriver creates a db driver based on the profile. PostgreSQL is the
// production database; SQLite covers development and tests.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown db driver %q: only 'postgres' and 'sqlite' are supported", profile.Driver)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
