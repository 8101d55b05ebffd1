package ledger

// registryABI is the subset of the registry contract the service calls.
const registryABI = `[
  {
    "inputs": [
      {"internalType": "string", "name": "userId", "type": "string"},
      {"internalType": "string", "name": "ipfsHash", "type": "string"}
    ],
    "name": "registerUser",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "string", "name": "", "type": "string"}],
    "name": "userHashes",
    "outputs": [{"internalType": "string", "name": "", "type": "string"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "address", "name": "criminal", "type": "address"}],
    "name": "registerCriminal",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "string", "name": "recordId", "type": "string"},
      {"internalType": "string", "name": "description", "type": "string"},
      {"internalType": "string", "name": "ipfsHash", "type": "string"}
    ],
    "name": "addCrime",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  }
]`

const (
	methodRegisterUser     = "registerUser"
	methodUserHashes       = "userHashes"
	methodRegisterCriminal = "registerCriminal"
	methodAddCrime         = "addCrime"
)
