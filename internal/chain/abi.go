package chain

// Read-only fragments of the deployed contracts. Only view methods used by
// the passport endpoints are listed.

const stampManagerABI = `[
	{"type":"function","name":"getUserStamps","stateMutability":"view",
	 "inputs":[{"name":"user","type":"address"}],
	 "outputs":[{"name":"","type":"uint256[]"}]},
	{"type":"function","name":"getStampMetadata","stateMutability":"view",
	 "inputs":[{"name":"stampId","type":"uint256"}],
	 "outputs":[
		{"name":"name","type":"string"},
		{"name":"organization","type":"string"},
		{"name":"category","type":"string"},
		{"name":"createdAt","type":"uint256"},
		{"name":"imageType","type":"uint8"}]},
	{"type":"function","name":"getOrganizationStampCount","stateMutability":"view",
	 "inputs":[{"name":"user","type":"address"},{"name":"organization","type":"string"}],
	 "outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"canMintNft","stateMutability":"view",
	 "inputs":[{"name":"user","type":"address"},{"name":"organization","type":"string"}],
	 "outputs":[{"name":"","type":"bool"}]}
]`

const nftABI = `[
	{"type":"function","name":"getTotalSupply","stateMutability":"view",
	 "inputs":[],
	 "outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"ownerOf","stateMutability":"view",
	 "inputs":[{"name":"tokenId","type":"uint256"}],
	 "outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"getTokenName","stateMutability":"view",
	 "inputs":[{"name":"tokenId","type":"uint256"}],
	 "outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"getTokenRarity","stateMutability":"view",
	 "inputs":[{"name":"tokenId","type":"uint256"}],
	 "outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"getTokenOrganizations","stateMutability":"view",
	 "inputs":[{"name":"tokenId","type":"uint256"}],
	 "outputs":[{"name":"","type":"string[]"}]},
	{"type":"function","name":"getTokenImageType","stateMutability":"view",
	 "inputs":[{"name":"tokenId","type":"uint256"}],
	 "outputs":[{"name":"","type":"uint8"}]},
	{"type":"function","name":"hasPlatformNft","stateMutability":"view",
	 "inputs":[{"name":"user","type":"address"}],
	 "outputs":[{"name":"","type":"bool"}]}
]`
