package output

type ConfigPort interface {
	Get(key string) string
	GetWithDefault(key string, defaultValue string) string
	Require(key string) (string, error)
	GetBool(key string, defaultValue bool) bool
	GetInt(key string, defaultValue int) int
}
