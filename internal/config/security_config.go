package config

type SecurityLevel int

const (
	SecurityPublic  SecurityLevel = iota // No authentication
	SecurityRefresh                      // Refresh token required
	SecurityAccess                       // Access token required
)

// EndpointSecurityConfig maps methods to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// AuthService - Public
	"/alugaai.v1.AuthService/SignUp": SecurityPublic,
	"/alugaai.v1.AuthService/SignIn": SecurityPublic,

	// AuthService - Refresh Protected
	"/alugaai.v1.AuthService/RefreshToken": SecurityRefresh,
	"/alugaai.v1.AuthService/SignOut":      SecurityRefresh,

	// AuthService - Access Protected
	"/alugaai.v1.AuthService/GetCurrentUser": SecurityAccess,

	// CatalogService - Public browsing
	"/alugaai.v1.CatalogService/GetItem":        SecurityPublic,
	"/alugaai.v1.CatalogService/SearchItems":    SecurityPublic,
	"/alugaai.v1.CatalogService/ListCategories": SecurityPublic,

	// CatalogService - Access Protected
	"/alugaai.v1.CatalogService/AddItem":     SecurityAccess,
	"/alugaai.v1.CatalogService/UpdateItem":  SecurityAccess,
	"/alugaai.v1.CatalogService/DeleteItem":  SecurityAccess,
	"/alugaai.v1.CatalogService/ListMyItems": SecurityAccess,

	// RentalService - All Access Protected
	"/alugaai.v1.RentalService/CreateRental":         SecurityAccess,
	"/alugaai.v1.RentalService/GetRental":            SecurityAccess,
	"/alugaai.v1.RentalService/ApproveRental":        SecurityAccess,
	"/alugaai.v1.RentalService/RejectRental":         SecurityAccess,
	"/alugaai.v1.RentalService/CancelRental":         SecurityAccess,
	"/alugaai.v1.RentalService/ActivateRental":       SecurityAccess,
	"/alugaai.v1.RentalService/CompleteRental":       SecurityAccess,
	"/alugaai.v1.RentalService/ListMyRentals":        SecurityAccess,
	"/alugaai.v1.RentalService/ListIncomingRequests": SecurityAccess,
	"/alugaai.v1.RentalService/ListItemRentals":      SecurityAccess,
	"/alugaai.v1.RentalService/WatchRentals":         SecurityAccess,

	// Health and reflection
	"/grpc.health.v1.Health/Check":                                   SecurityPublic,
	"/grpc.health.v1.Health/Watch":                                   SecurityPublic,
	"/grpc.health.v1.Health/List":                                    SecurityPublic,
	"/grpc.reflection.v1.ServerReflection/ServerReflectionInfo":      SecurityPublic,
	"/grpc.reflection.v1alpha.ServerReflection/ServerReflectionInfo": SecurityPublic,
}

// GetSecurityLevel returns the security level for a given method
func GetSecurityLevel(method string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[method]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAccess
}
