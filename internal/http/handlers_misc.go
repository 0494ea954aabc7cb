package http

import (
	"fmt"
	"net/http"

	"ledgerbook/internal/core"
	"ledgerbook/internal/log"
	"ledgerbook/internal/services"
)

func (s *Server) handleCreateMisc(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	var req miscCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	m, err := s.svc.CreateMiscLedger(r.Context(), owner, req.Data)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	Created(m).Header("Location", "/misc/"+m.ID).Write(w)
}

func (s *Server) handleListMisc(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	list, err := s.svc.ListMiscExpenses(r.Context(), owner)
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	if list == nil {
		list = []core.MiscExpense{}
	}
	OK(list).Write(w)
}

func (s *Server) handleGetMisc(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	m, err := s.svc.GetMiscExpense(r.Context(), id)
	if err == nil && m.Owner != owner {
		err = fmt.Errorf("%w: misc %s", core.ErrUnauthorized, id)
	}
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	OK(m).Write(w)
}

func (s *Server) handleDeleteMisc(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	if err := s.svc.DeleteMiscLedger(r.Context(), r.PathValue("id"), owner); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	NoContent().Write(w)
}

func (s *Server) handleAppendEntry(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	var req entryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpAppend, err)
		return
	}
	m, err := s.svc.AppendEntry(r.Context(), r.PathValue("id"), owner, services.EntryDraft{
		Date: req.Date.Time,
		Data: req.Data,
	})
	if err != nil {
		writeError(w, r, log.OpAppend, err)
		return
	}
	Created(m).Write(w)
}

func (s *Server) handleEditEntry(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	var req entryPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpEdit, err)
		return
	}
	m, err := s.svc.EditEntry(r.Context(), r.PathValue("id"), owner, r.PathValue("entryID"), req.patch())
	if err != nil {
		writeError(w, r, log.OpEdit, err)
		return
	}
	OK(m).Write(w)
}

func (s *Server) handleRemoveEntry(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	m, err := s.svc.RemoveEntry(r.Context(), r.PathValue("id"), owner, r.PathValue("entryID"))
	if err != nil {
		writeError(w, r, log.OpRemove, err)
		return
	}
	OK(m).Write(w)
}

func (s *Server) handleRemoveCategory(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	m, err := s.svc.RemoveEntriesByCategory(r.Context(), r.PathValue("id"), owner, r.PathValue("category"))
	if err != nil {
		writeError(w, r, log.OpRemoveCategory, err)
		return
	}
	OK(m).Write(w)
}
