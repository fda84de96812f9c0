package config

type Config struct {
	System struct {
		IsProd                bool   // Whether running in production
		Listen                string // Listen address
		DBConnectionString    string // Postgres connection string
		RedisConnectionString string // Redis connection string
	}
	Security struct {
		SignatureSecretKey string // Signs session cookies and API tokens; changing it signs everyone out
		CookieSecure       bool   // Set the Secure flag on cookies (serve over HTTPS)
	}
}
