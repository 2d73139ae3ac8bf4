package scoring

// relatedGroups clusters technologies that substitute for each other well
// enough to deserve partial credit. Lookups are by lowercase name.
var relatedGroups = [][]string{
	{"go", "rust"},
	{"python", "ruby"},
	{"java", "kotlin", "scala"},
	{"javascript", "typescript", "node", "node.js", "nodejs"},
	{"react", "vue", "angular", "svelte"},
	{"postgresql", "postgres", "mysql", "mariadb", "sqlite"},
	{"mongodb", "dynamodb", "cassandra", "couchdb"},
	{"redis", "memcached", "valkey"},
	{"kafka", "rabbitmq", "nats", "pulsar"},
	{"aws", "gcp", "azure"},
	{"kubernetes", "k8s", "docker", "nomad"},
	{"terraform", "pulumi", "cloudformation", "ansible"},
	{"grpc", "graphql", "rest"},
}

var relatedIndex = buildRelatedIndex()

func buildRelatedIndex() map[string]int {
	index := make(map[string]int)
	for group, members := range relatedGroups {
		for _, member := range members {
			index[member] = group
		}
	}
	return index
}

// hasRelated reports whether the offered set contains a technology from the
// same group as the preferred one.
func hasRelated(preferred string, offered map[string]struct{}) bool {
	group, ok := relatedIndex[preferred]
	if !ok {
		return false
	}
	for tech := range offered {
		if other, ok := relatedIndex[tech]; ok && other == group && tech != preferred {
			return true
		}
	}
	return false
}
