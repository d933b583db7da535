package repository

// Config represents a mirror pair, the source repository which is cloned
// locally and the destination it is mirror-pushed to.
type Config struct {
	// Name of the local directory of the bare mirror clone.
	// if empty it is derived from the source URL
	Name string `json:"name" yaml:"name" toml:"name"`

	// git URL of the remote repo to mirror
	Source string `json:"src" yaml:"src" toml:"src"`

	// git URL of the remote to push mirror to
	Destination string `json:"dest" yaml:"dest" toml:"dest"`

	// Auth config for both remotes, if not set it is inherited from
	// the configuration this mirror belongs to
	Auth Auth `json:"auth" yaml:"auth" toml:"auth"`
}

// Auth represents credentials used for both source and destination remotes.
// Empty Auth leaves git's own credential handling untouched.
type Auth struct {
	// username to use for basic or token based authentication
	Username string `json:"username" yaml:"username" toml:"username"`

	// password or personal access token to use for authentication
	Password string `json:"password" yaml:"password" toml:"password"`

	// SSH Details
	// path to the ssh key used for ssh remotes
	SSHKeyPath string `json:"ssh_key_path" yaml:"ssh_key_path" toml:"ssh_key_path"`

	// path to the known hosts of the remote host
	SSHKnownHostsPath string `json:"ssh_known_hosts_path" yaml:"ssh_known_hosts_path" toml:"ssh_known_hosts_path"`
}

// IsZero reports whether no credential is set
func (a Auth) IsZero() bool {
	return a == Auth{}
}
