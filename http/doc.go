// Package http provides the HTTP API of the AI CREAT backend.
//
// Every route is mounted under the configured API prefix (/api/v1) behind a
// CORS handler whose allowed origins come from BACKEND_CORS_ORIGINS.
//
// # Routes
//
//	GET    /health                 liveness and project name
//	GET    /providers              enabled AI providers, the default and their model and rate
//	GET    /providers/{name}       one provider's state
//	POST   /auth/refresh           exchange a valid token for a fresh one
//	POST   /projects/upload        create a project from multipart image files
//	GET    /projects/{id}/assets   list a project's assets
//	DELETE /projects/{id}          delete a project and its files
//
// Routes other than /health and the /providers routes require an
// "Authorization: Bearer <token>" header verified by AuthMiddleware.
//
// # Usage
//
//	handler := http.NewHandler(settings, http.Deps{
//	    Repo:      db.Repo(),
//	    Storage:   store,
//	    Tokens:    tokens,
//	    Providers: registry,
//	})
//	srv := &nethttp.Server{Addr: settings.Server().Addr(), Handler: handler.Router()}
//
// # Uploads
//
// The upload body is capped at MAX_FILE_SIZE per file for up to 50 files.
// Files are validated and stored one at a time; a failing file is reported in
// failed_files without aborting the rest.
//
// # Errors
//
// Errors are written as {"error": code, "message": text}. HandleError maps
// the sentinel errors of package aicreat to status codes.
package http
