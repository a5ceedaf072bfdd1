package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/emrgen/content/internal/manifest"
	"github.com/emrgen/content/internal/model"
	"github.com/emrgen/content/internal/store"
)

var _ manifest.LicenceResolver = (*LicenceService)(nil)

func NewLicenceService(store store.LicenceStore) *LicenceService {
	return &LicenceService{store: store}
}

// LicenceService registers licences and resolves the codes found in manifests.
type LicenceService struct {
	store store.LicenceStore
}

func (l *LicenceService) CreateLicence(ctx context.Context, code, title string) (*model.Licence, error) {
	licence := &model.Licence{Code: code, Title: title}
	if err := l.store.CreateLicence(ctx, licence); err != nil {
		return nil, err
	}
	return licence, nil
}

func (l *LicenceService) ListLicences(ctx context.Context) ([]*model.Licence, error) {
	return l.store.ListLicences(ctx)
}

// ResolveLicence reports whether code is a registered licence.
func (l *LicenceService) ResolveLicence(code string) (string, bool) {
	licence, err := l.store.GetLicence(context.Background(), code)
	if err != nil {
		return "", false
	}
	return licence.Code, true
}

// UpgradeManifest rewrites a v1 manifest file as v2. Licences that are not registered become
// defaultLicence.
func (l *LicenceService) UpgradeManifest(path, defaultLicence string) (*manifest.Manifest, error) {
	m, err := manifest.UpgradeFile(path, l, defaultLicence)
	if err != nil {
		return nil, err
	}
	logrus.Infof("upgraded manifest %s to version %d", path, m.Version)
	return m, nil
}
