// Package database provides the PostgreSQL backend for projects and their assets.
//
// The connection string is taken from config.DatabaseConfig.URL, so the pool
// always connects to the database described by the POSTGRES_* settings.
//
// # Usage
//
//	db, err := database.Connect(ctx, settings.Database())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	repo := db.Repo()
//	project, err := repo.CreateProject(ctx, "Spring campaign")
//
// Connect opens a pgx pool and pings it. Migrate creates the projects and
// assets tables if they do not exist; Validate checks an existing schema for
// deployments that migrate manually.
package database
