package core

import (
	"encoding/json"
	"net/http"

	"github.com/caasmo/daybook/backend"
)

const (
	CodeOkDocumentList    = "ok_document_list"
	CodeOkDocumentCreated = "ok_document_created"
	CodeOkDocumentUpdated = "ok_document_updated"
)

// DocumentListHandler lists the current user's document links.
// Endpoint: GET /api/documents
// Authenticated: Yes
func (a *App) DocumentListHandler(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())

	docs, err := a.Backend().ListDocuments(r.Context(), identity.ID)
	if err != nil {
		a.Logger().Error("documents: list failed", "user_id", identity.ID, "err", err)
		writeJsonError(w, errorBackendUnavailable)
		return
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{Status: http.StatusOK, Code: CodeOkDocumentList, Message: "Documents"},
		Data:      docs,
	})
}

// DocumentCreateHandler stores a document link.
// Endpoint: POST /api/documents
// Authenticated: Yes
// Allowed Mimetype: application/json
func (a *App) DocumentCreateHandler(w http.ResponseWriter, r *http.Request) {
	if err, resp := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}
	identity := identityFromContext(r.Context())

	var doc backend.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}
	if doc.Title == "" {
		writeJsonError(w, errorMissingFields)
		return
	}
	doc.UserID = identity.ID

	created, err := a.Backend().CreateDocument(r.Context(), doc)
	if err != nil {
		a.Logger().Error("documents: create failed", "user_id", identity.ID, "err", err)
		writeJsonError(w, errorBackendUnavailable)
		return
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{Status: http.StatusCreated, Code: CodeOkDocumentCreated, Message: "Document created"},
		Data:      created,
	})
}

// DocumentUpdateHandler replaces one of the current user's documents.
// Endpoint: PUT /api/documents/{id}
// Authenticated: Yes
// Allowed Mimetype: application/json
func (a *App) DocumentUpdateHandler(w http.ResponseWriter, r *http.Request) {
	if err, resp := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}
	identity := identityFromContext(r.Context())

	id := a.Router().Param(r, "id")
	if id == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	var doc backend.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}
	if doc.Title == "" {
		writeJsonError(w, errorMissingFields)
		return
	}
	doc.ID = id
	doc.UserID = identity.ID

	if err := a.Backend().UpdateDocument(r.Context(), doc); err != nil {
		a.Logger().Debug("documents: update failed", "user_id", identity.ID, "id", id, "err", err)
		writeJsonError(w, errorNotFound)
		return
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{Status: http.StatusOK, Code: CodeOkDocumentUpdated, Message: "Document updated"},
		Data:      doc,
	})
}

// DocumentDeleteHandler removes one of the current user's documents.
// Endpoint: DELETE /api/documents/{id}
// Authenticated: Yes
func (a *App) DocumentDeleteHandler(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())

	id := a.Router().Param(r, "id")
	if id == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	if err := a.Backend().DeleteDocument(r.Context(), identity.ID, id); err != nil {
		a.Logger().Debug("documents: delete failed", "user_id", identity.ID, "id", id, "err", err)
		writeJsonError(w, errorNotFound)
		return
	}

	writeJsonOk(w, okDeleted)
}
