package domain

import apperrors "github.com/signoria/signoria/internal/platform/errors"

var (
	// ErrNotAuthorized indicates the caller is not a current authority.
	ErrNotAuthorized = apperrors.New(apperrors.CodeNotAuthorized, "caller is not a current authority")
	// ErrSessionBusy indicates a proposal is already pending.
	ErrSessionBusy = apperrors.New(apperrors.CodeSessionBusy, "a proposal is already pending")
	// ErrNoSessionPending indicates no proposal is pending.
	ErrNoSessionPending = apperrors.New(apperrors.CodeNoSessionPending, "no proposal is pending")
	// ErrAlreadyVoted indicates the caller already voted on the pending proposal.
	ErrAlreadyVoted = apperrors.New(apperrors.CodeAlreadyVoted, "caller already voted on this proposal")

	// ErrAmountRequired indicates a zero token amount.
	ErrAmountRequired = apperrors.New(apperrors.CodeInvalidArgument, "amount must be greater than zero")
	// ErrBeneficiaryRequired indicates a missing or null beneficiary account.
	ErrBeneficiaryRequired = apperrors.New(apperrors.CodeInvalidArgument, "beneficiary account is required")
	// ErrTargetRequired indicates a missing or null target account.
	ErrTargetRequired = apperrors.New(apperrors.CodeInvalidArgument, "target account is required")
	// ErrMintingFinished indicates minting was irreversibly closed.
	ErrMintingFinished = apperrors.New(apperrors.CodeInvalidArgument, "minting is finished")
	// ErrTargetNotAuthority indicates the target account is not a current authority.
	ErrTargetNotAuthority = apperrors.New(apperrors.CodeInvalidArgument, "target account is not an authority")
	// ErrTargetAlreadyAuthority indicates the target account is already an authority.
	ErrTargetAlreadyAuthority = apperrors.New(apperrors.CodeInvalidArgument, "target account is already an authority")
	// ErrLastAuthority indicates removal would leave the registry empty.
	ErrLastAuthority = apperrors.New(apperrors.CodeInvalidArgument, "cannot remove the last authority")
	// ErrQuorumUnchanged indicates the proposed quorum equals the current one.
	ErrQuorumUnchanged = apperrors.New(apperrors.CodeInvalidArgument, "proposed quorum equals the current quorum")
	// ErrQuorumOutOfRange indicates the proposed quorum is zero or exceeds the registry size.
	ErrQuorumOutOfRange = apperrors.New(apperrors.CodeInvalidArgument, "proposed quorum is out of range")
	// ErrAddressInvalid indicates a malformed account address.
	ErrAddressInvalid = apperrors.New(apperrors.CodeInvalidArgument, "account address is malformed")

	// ErrAuthorityNotFound indicates a registry lookup miss.
	ErrAuthorityNotFound = apperrors.New(apperrors.CodeNotFound, "authority not found")

	// ErrMintAfterFinish indicates the effect dispatcher caught a mint on a finished supply.
	ErrMintAfterFinish = apperrors.New(apperrors.CodeInvariantViolation, "mint dispatched after minting finished")
	// ErrRegistryCorrupted indicates the effect dispatcher found the registry in an impossible state.
	ErrRegistryCorrupted = apperrors.New(apperrors.CodeInvariantViolation, "authority registry is in an impossible state")

	// ErrStoreNotConfigured indicates the service is missing persistence wiring.
	ErrStoreNotConfigured = apperrors.New(apperrors.CodeInternal, "governance store is not configured")
	// ErrStateNotSeeded indicates the governance state was never initialized.
	ErrStateNotSeeded = apperrors.New(apperrors.CodeInternal, "governance state is not seeded")
)
