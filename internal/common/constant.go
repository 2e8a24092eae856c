package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// control API token on outbound requests.
const AccessTokenHeaderName = "access_token"

// Wire literals of the line protocol spoken with the camera module.
const (
	FeatureTag  = "face_feature"
	PassLiteral = "auth_pass"
	FailLiteral = "auth_fail"
)

// Default file names of the two append-only logs.
const (
	CredentialLogName = "face_hashes.txt"
	BindingLogName    = "hash_to_num.txt"
)
