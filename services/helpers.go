package services

import (
	"context"
	"errors"

	"github.com/setpoint-app/setpoint/models"
	"github.com/setpoint-app/setpoint/repositories"
	"github.com/setpoint-app/setpoint/storage"
)

// requireOrgRole проверяет, что пользователь состоит в организации с
// одной из разрешённых ролей. Отсутствие членства наружу не
// раскрывается, в обоих случаях возвращается ErrForbiddenOperation.
func requireOrgRole(ctx context.Context, orgRepo repositories.OrganizationRepository, orgID, userID int, allowed ...models.OrgRole) error {
	role, err := orgRepo.GetMemberRole(ctx, orgID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrMembershipNotFound) {
			return ErrForbiddenOperation
		}
		return err
	}
	for _, a := range allowed {
		if role == a {
			return nil
		}
	}
	return ErrForbiddenOperation
}

func populateUserLogoURL(user *models.User, uploader storage.FileUploader) {
	if user != nil && user.LogoKey != nil && *user.LogoKey != "" && uploader != nil {
		if url := uploader.GetPublicURL(*user.LogoKey); url != "" {
			user.LogoURL = &url
		}
	}
}

func populateTeamLogoURL(team *models.Team, uploader storage.FileUploader) {
	if team != nil && team.LogoKey != nil && *team.LogoKey != "" && uploader != nil {
		if url := uploader.GetPublicURL(*team.LogoKey); url != "" {
			team.LogoURL = &url
		}
	}
}

func populateOrganizationLogoURL(org *models.Organization, uploader storage.FileUploader) {
	if org != nil && org.LogoKey != nil && *org.LogoKey != "" && uploader != nil {
		if url := uploader.GetPublicURL(*org.LogoKey); url != "" {
			org.LogoURL = &url
		}
	}
}
