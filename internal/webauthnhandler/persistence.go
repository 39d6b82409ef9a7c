package webauthnhandler

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/myrjola/interviewdash/internal/errors"
	"log/slog"
)

func (h *WebAuthnHandler) upsertUser(ctx context.Context, user webauthn.User) error {
	stmt := `INSERT INTO users (id, display_name)
VALUES (:id, :display_name)
ON CONFLICT (id) DO UPDATE SET display_name = :display_name`
	if _, err := h.db.ReadWrite.ExecContext(ctx, stmt,
		sql.Named("id", user.WebAuthnID()),
		sql.Named("display_name", user.WebAuthnDisplayName()),
	); err != nil {
		return errors.Wrap(
			err,
			"db upsert",
			slog.String("display_name", user.WebAuthnDisplayName()),
			userIDAttr(user.WebAuthnID()),
		)
	}
	return nil
}

type credentialRow struct {
	ID                        []byte `db:"id"`
	PublicKey                 []byte `db:"public_key"`
	AttestationType           string `db:"attestation_type"`
	Transport                 string `db:"transport"`
	FlagUserPresent           bool   `db:"flag_user_present"`
	FlagUserVerified          bool   `db:"flag_user_verified"`
	FlagBackupEligible        bool   `db:"flag_backup_eligible"`
	FlagBackupState           bool   `db:"flag_backup_state"`
	AuthenticatorAAGUID       []byte `db:"authenticator_aaguid"`
	AuthenticatorSignCount    uint32 `db:"authenticator_sign_count"`
	AuthenticatorCloneWarning bool   `db:"authenticator_clone_warning"`
	AuthenticatorAttachment   string `db:"authenticator_attachment"`
}

func (row credentialRow) credential() (webauthn.Credential, error) {
	credential := webauthn.Credential{ //nolint:exhaustruct // the remaining fields are not persisted.
		ID:              row.ID,
		PublicKey:       row.PublicKey,
		AttestationType: row.AttestationType,
		Flags: webauthn.CredentialFlags{
			UserPresent:    row.FlagUserPresent,
			UserVerified:   row.FlagUserVerified,
			BackupEligible: row.FlagBackupEligible,
			BackupState:    row.FlagBackupState,
		},
		Authenticator: webauthn.Authenticator{
			AAGUID:       row.AuthenticatorAAGUID,
			SignCount:    row.AuthenticatorSignCount,
			CloneWarning: row.AuthenticatorCloneWarning,
			Attachment:   protocol.AuthenticatorAttachment(row.AuthenticatorAttachment),
		},
	}
	if err := json.Unmarshal([]byte(row.Transport), &credential.Transport); err != nil {
		return webauthn.Credential{}, errors.Wrap(err, "JSON decode transport")
	}
	return credential, nil
}

func (h *WebAuthnHandler) getUser(ctx context.Context, id []byte) (*user, error) {
	var (
		err  error
		rows []credentialRow
	)

	user := user{} //nolint:exhaustruct // empty struct initialised from database.
	stmt := `SELECT id, display_name FROM users WHERE id = ?`
	err = h.db.ReadOnly.QueryRowContext(ctx, stmt, id).Scan(&user.id, &user.displayName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrap(ErrUnknownUser, "read user", userIDAttr(id))
	}
	if err != nil {
		return nil, errors.Wrap(err, "read user", userIDAttr(id))
	}

	stmt = `SELECT id,
       public_key,
       attestation_type,
       transport,
       flag_user_present,
       flag_user_verified,
       flag_backup_eligible,
       flag_backup_state,
       authenticator_aaguid,
       authenticator_sign_count,
       authenticator_clone_warning,
       authenticator_attachment
FROM credentials
WHERE user_id = ?`
	if err = h.db.ReadOnly.SelectContext(ctx, &rows, stmt, id); err != nil {
		return nil, errors.Wrap(err, "select credentials", userIDAttr(id))
	}

	user.credentials = make([]webauthn.Credential, 0, len(rows))
	for _, row := range rows {
		var credential webauthn.Credential
		if credential, err = row.credential(); err != nil {
			return nil, errors.Wrap(err, "convert credential", slog.String("credential_id", hex.EncodeToString(row.ID)))
		}
		user.credentials = append(user.credentials, credential)
	}

	return &user, nil
}

func (h *WebAuthnHandler) upsertCredential(ctx context.Context, userID []byte, credential *webauthn.Credential) error {
	var err error
	stmt := `INSERT INTO credentials (id,
                         user_id,
                         public_key,
                         attestation_type,
                         transport,
                         flag_user_present,
                         flag_user_verified,
                         flag_backup_eligible,
                         flag_backup_state,
                         authenticator_aaguid,
                         authenticator_sign_count,
                         authenticator_clone_warning,
                         authenticator_attachment)
VALUES (:id, :user_id, :public_key, :attestation_type, :transport, :flag_user_present, :flag_user_verified,
        :flag_backup_eligible, :flag_backup_state, :authenticator_aaguid, :authenticator_sign_count,
        :authenticator_clone_warning, :authenticator_attachment)
ON CONFLICT (id) DO UPDATE SET attestation_type            = excluded.attestation_type,
                               transport                   = excluded.transport,
                               flag_user_present           = excluded.flag_user_present,
                               flag_user_verified          = excluded.flag_user_verified,
                               flag_backup_eligible        = excluded.flag_backup_eligible,
                               flag_backup_state           = excluded.flag_backup_state,
                               authenticator_aaguid        = excluded.authenticator_aaguid,
                               authenticator_sign_count    = excluded.authenticator_sign_count,
                               authenticator_clone_warning = excluded.authenticator_clone_warning,
                               authenticator_attachment    = excluded.authenticator_attachment`
	var encodedTransport []byte
	if encodedTransport, err = json.Marshal(credential.Transport); err != nil {
		return errors.Wrap(err, "JSON encode transport")
	}
	row := credentialRow{
		ID:                        credential.ID,
		PublicKey:                 credential.PublicKey,
		AttestationType:           credential.AttestationType,
		Transport:                 string(encodedTransport),
		FlagUserPresent:           credential.Flags.UserPresent,
		FlagUserVerified:          credential.Flags.UserVerified,
		FlagBackupEligible:        credential.Flags.BackupEligible,
		FlagBackupState:           credential.Flags.BackupState,
		AuthenticatorAAGUID:       credential.Authenticator.AAGUID,
		AuthenticatorSignCount:    credential.Authenticator.SignCount,
		AuthenticatorCloneWarning: credential.Authenticator.CloneWarning,
		AuthenticatorAttachment:   string(credential.Authenticator.Attachment),
	}
	if _, err = h.db.ReadWrite.ExecContext(ctx, stmt,
		sql.Named("id", row.ID),
		sql.Named("user_id", userID),
		sql.Named("public_key", row.PublicKey),
		sql.Named("attestation_type", row.AttestationType),
		sql.Named("transport", row.Transport),
		sql.Named("flag_user_present", row.FlagUserPresent),
		sql.Named("flag_user_verified", row.FlagUserVerified),
		sql.Named("flag_backup_eligible", row.FlagBackupEligible),
		sql.Named("flag_backup_state", row.FlagBackupState),
		sql.Named("authenticator_aaguid", row.AuthenticatorAAGUID),
		sql.Named("authenticator_sign_count", int64(row.AuthenticatorSignCount)),
		sql.Named("authenticator_clone_warning", row.AuthenticatorCloneWarning),
		sql.Named("authenticator_attachment", row.AuthenticatorAttachment),
	); err != nil {
		return errors.Wrap(err, "db upsert credential",
			userIDAttr(userID),
			slog.String("credential_id", hex.EncodeToString(credential.ID)),
		)
	}
	return nil
}

func (h *WebAuthnHandler) userExists(ctx context.Context, userID []byte) (bool, error) {
	var exists bool
	if err := h.db.ReadOnly.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)`, userID); err != nil {
		return false, errors.Wrap(err, "query user exists", userIDAttr(userID))
	}
	return exists, nil
}
