package fakeapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"financemonkey/fm-cli/internal/models"
)

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if !decode(w, r, &creds) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[creds.Email]
	if !ok || u.Password != creds.Password {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	writeJSON(w, http.StatusOK, s.issueLocked(creds.Email))
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var reg models.Registration
	if !decode(w, r, &reg) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[reg.Email]; exists {
		writeError(w, http.StatusConflict, "Email is already registered")
		return
	}
	s.users[reg.Email] = reg
	writeJSON(w, http.StatusCreated, models.User{ID: "user-" + reg.Email, Email: reg.Email, Name: reg.Name})
}

func (s *Server) google(w http.ResponseWriter, r *http.Request) {
	var profile models.GoogleProfile
	if !decode(w, r, &profile) {
		return
	}
	if profile.GoogleID == "" {
		writeError(w, http.StatusBadRequest, "googleId is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[profile.Email]; !ok {
		s.users[profile.Email] = models.Registration{Name: profile.Name, Email: profile.Email}
	}
	writeJSON(w, http.StatusOK, s.issueLocked(profile.Email))
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if !decode(w, r, &body) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	email, ok := s.refreshTokens[body.RefreshToken]
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	delete(s.refreshTokens, body.RefreshToken)
	issued := s.issueLocked(email)
	writeJSON(w, http.StatusOK, models.TokenPair{Token: issued.Token, RefreshToken: issued.RefreshToken})
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, append([]models.Transaction{}, s.Transactions...))
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var tx models.Transaction
	if !decode(w, r, &tx) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tx.ID = s.nextID("tx")
	for _, c := range s.Categories {
		if c.ID == tx.CategoryID {
			tx.CategoryName = c.Name
		}
	}
	s.Transactions = append(s.Transactions, tx)
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) updateTransaction(w http.ResponseWriter, r *http.Request) {
	var tx models.Transaction
	if !decode(w, r, &tx) {
		return
	}
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Transactions {
		if s.Transactions[i].ID == id {
			tx.ID = id
			s.Transactions[i] = tx
			writeJSON(w, http.StatusOK, tx)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Transaction not found")
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Transactions {
		if s.Transactions[i].ID == id {
			s.Transactions = append(s.Transactions[:i:i], s.Transactions[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Transaction not found")
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, append([]models.Category{}, s.Categories...))
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	var c models.Category
	if !decode(w, r, &c) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.nextID("cat")
	s.Categories = append(s.Categories, c)
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) updateCategory(w http.ResponseWriter, r *http.Request) {
	var c models.Category
	if !decode(w, r, &c) {
		return
	}
	id := chi.URLParam(r, "id")
	if c.ParentCategoryID == id {
		writeError(w, http.StatusBadRequest, "A category cannot be its own parent")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Categories {
		if s.Categories[i].ID == id {
			c.ID = id
			s.Categories[i] = c
			writeJSON(w, http.StatusOK, c)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Category not found")
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.Categories {
		if c.ParentCategoryID == id {
			writeError(w, http.StatusConflict, "Category has subcategories")
			return
		}
	}
	for i := range s.Categories {
		if s.Categories[i].ID == id {
			s.Categories = append(s.Categories[:i:i], s.Categories[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Category not found")
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, append([]models.EmailAccount{}, s.Accounts...))
}

func (s *Server) connectAccount(w http.ResponseWriter, r *http.Request) {
	var in models.EmailAccountInput
	if !decode(w, r, &in) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a := models.EmailAccount{
		ID:          s.nextID("acct"),
		Email:       in.Email,
		Provider:    in.Provider,
		Connected:   true,
		Description: in.Description,
	}
	s.Accounts = append(s.Accounts, a)
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) disconnectAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Accounts {
		if s.Accounts[i].ID == id {
			s.Accounts[i].Connected = false
			writeJSON(w, http.StatusOK, map[string]string{"status": "disconnected"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "Email account not found")
}

func (s *Server) fetchAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Accounts {
		if s.Accounts[i].ID == id {
			s.Accounts[i].LastSynced = models.NewTimestamp(s.now())
			writeJSON(w, http.StatusOK, map[string]string{"status": "fetching"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "Email account not found")
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.Summary)
}

func (s *Server) driveStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.Drive)
}

func (s *Server) driveFiles(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, models.DriveFileList{Files: append([]models.DriveFile{}, s.DriveFiles...)})
}

func (s *Server) driveExport(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.Drive.Connected {
		writeError(w, http.StatusBadRequest, "Google Drive is not connected")
		return
	}
	id := s.nextID("file")
	s.DriveFiles = append(s.DriveFiles, models.DriveFile{ID: id, Name: "transactions.csv", MimeType: "text/csv"})
	writeJSON(w, http.StatusOK, models.DriveExportResult{Status: "exported", FileID: id})
}
