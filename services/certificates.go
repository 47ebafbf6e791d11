package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"certvault/files"
	"certvault/mint"
	"certvault/models"
	"certvault/store"
	"certvault/verification"

	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type Deps struct {
	Store         store.Store
	Verifier      verification.Verifier
	Registry      *verification.Registry
	Minter        *mint.Minter
	Storage       *files.Storage
	PublicBaseURL string
	Logger        *zap.Logger
}

type CertificateService struct {
	store         store.Store
	verifier      verification.Verifier
	registry      *verification.Registry
	minter        *mint.Minter
	storage       *files.Storage
	publicBaseURL string
	logger        *zap.Logger
}

func NewCertificateService(d Deps) *CertificateService {
	if d.Logger == nil {
		d.Logger = zap.L()
	}
	return &CertificateService{
		store:         d.Store,
		verifier:      d.Verifier,
		registry:      d.Registry,
		minter:        d.Minter,
		storage:       d.Storage,
		publicBaseURL: strings.TrimRight(d.PublicBaseURL, "/"),
		logger:        d.Logger,
	}
}

// SubmitForm is a new certificate as entered by the user.
type SubmitForm struct {
	models.CertificateFields
	File *files.File
}

// ShareLink is the public view URL of a certificate and its QR code.
type ShareLink struct {
	URL       string `json:"url"`
	QRCodePNG string `json:"qr_code_png"`
}

// PublicRecord is a certificate with its verification history.
type PublicRecord struct {
	Certificate *models.Certificate      `json:"certificate"`
	Logs        []models.VerificationLog `json:"logs"`
}

func (s *CertificateService) owned(ctx context.Context, userID, id string) (*models.Certificate, error) {
	cert, err := s.store.GetCertificate(ctx, id)
	if err != nil {
		return nil, err
	}
	if cert.UserID != userID {
		return nil, ErrForbidden
	}
	return cert, nil
}

func (s *CertificateService) List(ctx context.Context, userID string) ([]models.Certificate, error) {
	return s.store.ListCertificates(ctx, userID)
}

// Get returns an owned certificate and starts watching it while pending.
func (s *CertificateService) Get(ctx context.Context, userID, id string) (*models.Certificate, error) {
	cert, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	s.registry.Watch(cert.ID, userID, cert.VerificationStatus)
	return cert, nil
}

// Unwatch stops background polling of a certificate.
func (s *CertificateService) Unwatch(ctx context.Context, userID, id string) (bool, error) {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return false, err
	}
	return s.registry.Stop(id), nil
}

// Status is the manual "check status" action.
func (s *CertificateService) Status(ctx context.Context, userID, id string) (models.VerificationStatus, error) {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return "", err
	}
	return s.registry.CheckNow(ctx, id)
}

func (s *CertificateService) Create(ctx context.Context, userID string, fields models.CertificateFields) (*models.Certificate, error) {
	if errs := validateFields(fields); len(errs) > 0 {
		return nil, errs
	}
	return s.store.CreateCertificate(ctx, userID, fields)
}

func validateFields(fields models.CertificateFields) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(fields.Title) == "" {
		errs["title"] = "Title is required"
	}
	if strings.TrimSpace(fields.InstitutionName) == "" {
		errs["institution_name"] = "Institution name is required"
	}
	if strings.TrimSpace(fields.ProgramName) == "" {
		errs["program_name"] = "Program name is required"
	}
	if strings.TrimSpace(fields.IssueDate) == "" {
		errs["issue_date"] = "Issue date is required"
	}
	return errs
}

// Submit runs the whole submission: convert, upload, create, verify, watch.
// When a step after creation fails the created certificate is returned with
// the error.
func (s *CertificateService) Submit(ctx context.Context, userID string, form SubmitForm) (*models.Certificate, error) {
	errs := validateFields(form.CertificateFields)
	if form.File == nil || len(form.File.Data) == 0 {
		errs["certificate_file"] = "Certificate file is required"
	}
	if len(errs) > 0 {
		return nil, errs
	}

	log := s.logger.With(zap.String("user_id", userID), zap.String("title", form.Title))

	file := form.File
	if !file.IsPDF() {
		log.Info("Converting certificate to PDF", zap.String("file", file.Name), zap.String("mime", file.MIME()))
		pdf, err := files.ConvertToPDF(file)
		if err != nil {
			return nil, fmt.Errorf("convert certificate: %w", err)
		}
		file = pdf
	}

	url, err := s.storage.Upload(file, files.KindCertificate)
	if err != nil {
		return nil, fmt.Errorf("upload certificate: %w", err)
	}
	log.Info("Certificate uploaded", zap.String("url", url))

	fields := form.CertificateFields
	fields.CertificateURL = url
	fields.VerificationURL = s.publicBaseURL + "/verify/" + userID

	cert, err := s.store.CreateCertificate(ctx, userID, fields)
	if err != nil {
		return nil, fmt.Errorf("create certificate: %w", err)
	}
	log = log.With(zap.String("certificate_id", cert.ID))
	log.Info("Certificate created")

	if err := s.verifier.Verify(ctx, userID, cert.ID); err != nil {
		return cert, fmt.Errorf("start verification: %w", err)
	}
	s.registry.Watch(cert.ID, userID, cert.VerificationStatus)
	log.Info("Verification started")

	return cert, nil
}

// Verify starts verification, resubmitting a rejected certificate.
func (s *CertificateService) Verify(ctx context.Context, userID, id string) (*models.Certificate, error) {
	cert, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	switch cert.VerificationStatus {
	case models.StatusVerified:
		return nil, ErrAlreadyVerified
	case models.StatusRejected:
		if cert, err = s.store.SetStatus(ctx, id, models.StatusPending, datatypes.JSON(`{}`)); err != nil {
			return nil, err
		}
		s.logger.Info("Certificate resubmitted", zap.String("certificate_id", id))
	}

	if err := s.verifier.Verify(ctx, userID, id); err != nil {
		return nil, fmt.Errorf("start verification: %w", err)
	}
	s.registry.Watch(id, userID, models.StatusPending)
	return cert, nil
}

func (s *CertificateService) Mint(ctx context.Context, userID, id string) (*models.Certificate, error) {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.minter.Mint(ctx, id)
}

func (s *CertificateService) Logs(ctx context.Context, userID, id string) ([]models.VerificationLog, error) {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.store.ListVerificationLogs(ctx, id)
}

func (s *CertificateService) Share(ctx context.Context, userID, id string) (*ShareLink, error) {
	cert, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/view/%s/%s", s.publicBaseURL, cert.UserID, cert.ID)
	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	return &ShareLink{URL: url, QRCodePNG: base64.StdEncoding.EncodeToString(png)}, nil
}

// Public returns a certificate and its logs to anyone holding the id.
func (s *CertificateService) Public(ctx context.Context, id string) (*PublicRecord, error) {
	cert, err := s.store.GetCertificate(ctx, id)
	if err != nil {
		return nil, err
	}
	logs, err := s.store.ListVerificationLogs(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PublicRecord{Certificate: cert, Logs: logs}, nil
}

// View is the shared certificate page; the owner must match.
func (s *CertificateService) View(ctx context.Context, userID, id string) (*models.Certificate, error) {
	cert, err := s.store.GetCertificate(ctx, id)
	if err != nil {
		return nil, err
	}
	if cert.UserID != userID {
		return nil, store.ErrNotFound
	}
	return cert, nil
}

// VerificationResult is a status report from the external worker.
type VerificationResult struct {
	CertificateID string                    `json:"certificate_id" validate:"required"`
	Status        models.VerificationStatus `json:"status" validate:"required,oneof=pending verified rejected"`
	Step          string                    `json:"step"`
	Details       datatypes.JSON            `json:"details"`
}

// ApplyResult records a worker report as a status transition plus log entry.
func (s *CertificateService) ApplyResult(ctx context.Context, r VerificationResult) (*models.Certificate, error) {
	var details datatypes.JSON
	if len(r.Details) > 0 {
		details = r.Details
	}
	cert, err := s.store.SetStatus(ctx, r.CertificateID, r.Status, details)
	if err != nil {
		return nil, err
	}

	step := r.Step
	if step == "" {
		step = models.StepIssuerVerification
	}
	logStatus := models.LogPending
	switch r.Status {
	case models.StatusVerified:
		logStatus = models.LogSuccess
	case models.StatusRejected:
		logStatus = models.LogFailed
	}
	if err := s.store.AppendVerificationLog(ctx, &models.VerificationLog{
		CertificateID:    r.CertificateID,
		VerificationStep: step,
		Status:           logStatus,
		Details:          details,
	}); err != nil {
		return nil, fmt.Errorf("append verification log: %w", err)
	}

	s.logger.Info("Verification result applied",
		zap.String("certificate_id", r.CertificateID), zap.String("status", string(r.Status)))
	return cert, nil
}

// ResumePending watches every pending certificate whose viewer has not
// unwatched it; it returns how many new pollers were started.
func (s *CertificateService) ResumePending(ctx context.Context) (int, error) {
	pending, err := s.store.ListPending(ctx)
	if err != nil {
		return 0, err
	}
	started := 0
	for _, cert := range pending {
		if s.registry.Resume(cert.ID, cert.UserID, cert.VerificationStatus) {
			started++
		}
	}
	return started, nil
}
