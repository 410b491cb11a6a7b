// Package aicreat holds the shared domain types and errors of the AI CREAT
// backend: projects, uploaded assets, and the path rules applied to them.
//
// # Key Components
//
//   - config: typed settings snapshot built from the environment and an optional .env file
//   - upload: filesystem store for uploaded images, enforcing size and extension limits
//   - database: PostgreSQL pool and project/asset repository
//   - auth: HS256 access tokens signed with the configured secret
//   - ai: registry of configured AI providers with per-provider rate limits
//   - http: chi router exposing the API under /api/v1
//
// # Example Usage
//
//	settings, err := config.Load(config.DefaultOverrideFile, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	db, err := database.Connect(ctx, settings.Database())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
package aicreat
